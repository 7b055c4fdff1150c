// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"bytes"
	"context"
	_ "embed"
	"log/slog"
	"os"
	"time"

	"github.com/z5labs/otelpush"
	"github.com/z5labs/otelpush/config"
	"github.com/z5labs/otelpush/httpclient"
)

//go:embed config.yaml
var configBytes []byte

type Config struct {
	Metrics struct {
		ServiceName    string        `config:"serviceName"`
		Endpoint       string        `config:"endpoint"`
		ExportInterval time.Duration `config:"exportInterval"`
	} `config:"metrics"`
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{AddSource: true}))

	m, err := config.Read(config.FromYaml(bytes.NewReader(configBytes)))
	if err != nil {
		log.Error("failed to read config", slog.Any("error", err))
		os.Exit(1)
	}

	var cfg Config
	err = m.Unmarshal(&cfg)
	if err != nil {
		log.Error("failed to unmarshal config", slog.Any("error", err))
		os.Exit(1)
	}

	ctx := context.Background()
	mp, err := otelpush.HTTP(
		otelpush.Endpoint(cfg.Metrics.Endpoint),
		otelpush.ServiceName(cfg.Metrics.ServiceName),
		otelpush.ExportInterval(cfg.Metrics.ExportInterval),
		otelpush.HTTPClient(httpclient.New(
			httpclient.Name("otlp_export"),
			httpclient.MaxRetries(3),
			httpclient.RetryWaitMin(time.Second),
			httpclient.RetryWaitMax(10*time.Second),
			httpclient.TripAfter(5),
			httpclient.LogHandler(log.Handler()),
		)),
	).Init(ctx)
	if err != nil {
		log.Error("failed to initialize metric exporting", slog.Any("error", err))
		os.Exit(1)
	}
	defer mp.Shutdown(ctx)

	counter, err := mp.Meter("fromconfig").Int64Counter("work_items")
	if err != nil {
		log.Error("failed to create counter", slog.Any("error", err))
		os.Exit(1)
	}

	for i := 0; i < 10; i++ {
		counter.Add(ctx, 1)
		time.Sleep(time.Second)
	}
}

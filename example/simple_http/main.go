// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/z5labs/otelpush"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{AddSource: true}))

	ctx := context.Background()
	mp, err := otelpush.InitHTTP(ctx, "http://localhost:4318")
	if err != nil {
		log.Error("failed to initialize metric exporting", slog.Any("error", err))
		os.Exit(1)
	}
	defer mp.Shutdown(ctx)

	counter, err := mp.Meter("simple_http").Int64Counter("work_items")
	if err != nil {
		log.Error("failed to create counter", slog.Any("error", err))
		os.Exit(1)
	}

	for i := 0; i < 10; i++ {
		counter.Add(ctx, 1)
		time.Sleep(time.Second)
	}
}

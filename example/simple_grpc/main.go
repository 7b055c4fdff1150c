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

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{AddSource: true}))

	// Note the use of insecure transport here. TLS is recommended in production.
	conn, err := grpc.NewClient(
		"localhost:4317",
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		log.Error("failed to create client connection", slog.Any("error", err))
		os.Exit(1)
	}
	defer conn.Close()

	ctx := context.Background()
	mp, err := otelpush.GRPC(
		otelpush.GRPCConn(conn),
		otelpush.ServiceName("simple_grpc"),
		otelpush.ExportTimeout(5*time.Second),
		otelpush.ExportInterval(10*time.Second),
	).Init(ctx)
	if err != nil {
		log.Error("failed to initialize metric exporting", slog.Any("error", err))
		os.Exit(1)
	}
	defer mp.Shutdown(ctx)

	gauge, err := mp.Meter("simple_grpc").Float64Gauge("queue_depth")
	if err != nil {
		log.Error("failed to create gauge", slog.Any("error", err))
		os.Exit(1)
	}

	for i := 0; i < 10; i++ {
		gauge.Record(ctx, float64(10-i))
		time.Sleep(time.Second)
	}
}

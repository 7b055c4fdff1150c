// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otelpush configures push based OpenTelemetry metric providers.
//
// The package is built around the [Initializer] interface. An Initializer
// constructs a [go.opentelemetry.io/otel/sdk/metric.MeterProvider] which is
// bound to a push exporter and flushed on a fixed interval by a periodic
// reader. The provider is returned wrapped in a [Handle] which guarantees
// it is gracefully shut down exactly once.
//
// # Transports
//
// Metrics can be pushed to a collector over OTLP HTTP or OTLP gRPC, both
// using the binary protobuf encoding:
//
//	mp, err := otelpush.InitHTTP(ctx, "http://localhost:4318")
//	if err != nil {
//		return err
//	}
//	defer mp.Shutdown(ctx)
//
// For quick local inspection, [Local] writes metrics to an [io.Writer]
// instead of a collector, and [GoogleCloud] exports directly to Cloud
// Monitoring.
//
// # Timeout and interval
//
// Unless set explicitly with [ExportTimeout] and [ExportInterval], the
// per-export timeout and the flush interval are resolved from the
// OTEL_METRIC_EXPORT_TIMEOUT and OTEL_METRIC_EXPORT_INTERVAL environment
// variables. Absent or malformed values silently fall back to
// [DefaultExportTimeout] and [DefaultExportInterval].
//
// # Lifecycle
//
// A [Handle] must be bound to a variable and shut down when the process
// stops emitting metrics, typically with a defer. Discarding the handle
// without calling Shutdown means the final flush never happens.
package otelpush

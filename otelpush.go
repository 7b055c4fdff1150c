// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelpush

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/z5labs/otelpush/config"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	timeoutEnvVar  = "OTEL_METRIC_EXPORT_TIMEOUT"
	intervalEnvVar = "OTEL_METRIC_EXPORT_INTERVAL"
)

const (
	// DefaultExportTimeout matches the OTLP exporters own default request timeout.
	DefaultExportTimeout = 10 * time.Second

	// DefaultExportInterval is the default flush interval of the periodic reader.
	DefaultExportInterval = 60 * time.Second
)

// Initializer
type Initializer interface {
	Init(context.Context) (*Handle, error)
}

// Common
type Common struct {
	ServiceName string `config:"serviceName"`

	// ExportTimeout bounds each individual export attempt. If zero, it is
	// resolved from the OTEL_METRIC_EXPORT_TIMEOUT environment variable.
	ExportTimeout time.Duration `config:"exportTimeout"`

	// ExportInterval is the time between successive automatic flushes. If
	// zero, it is resolved from the OTEL_METRIC_EXPORT_INTERVAL environment
	// variable.
	ExportInterval time.Duration `config:"exportInterval"`
}

// CommonOption
type CommonOption interface {
	HTTPOption
	GRPCOption
	LocalOption
	GoogleCloudOption
}

type commonOptionFunc func(*Common)

func (f commonOptionFunc) ApplyHTTP(cfg *HTTPConfig) {
	f(&cfg.Common)
}

func (f commonOptionFunc) ApplyGRPC(cfg *GRPCConfig) {
	f(&cfg.Common)
}

func (f commonOptionFunc) ApplyLocal(cfg *LocalConfig) {
	f(&cfg.Common)
}

func (f commonOptionFunc) ApplyGoogleCloud(cfg *GoogleCloudConfig) {
	f(&cfg.Common)
}

// ServiceName
func ServiceName(name string) CommonOption {
	return commonOptionFunc(func(c *Common) {
		c.ServiceName = name
	})
}

// ExportTimeout configures the timeout applied to each export attempt.
func ExportTimeout(d time.Duration) CommonOption {
	return commonOptionFunc(func(c *Common) {
		c.ExportTimeout = d
	})
}

// ExportInterval configures the interval between automatic flushes.
func ExportInterval(d time.Duration) CommonOption {
	return commonOptionFunc(func(c *Common) {
		c.ExportInterval = d
	})
}

// BuildError occurs if the exporter or meter provider can not be constructed.
type BuildError struct {
	Cause error
}

// Error implements the [builtin.error] interface.
func (e BuildError) Error() string {
	return fmt.Sprintf("failed to build meter provider: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e BuildError) Unwrap() error {
	return e.Cause
}

// timeoutAndInterval returns the explicitly configured values, resolving
// any unset one from the given environment snapshot.
func (c Common) timeoutAndInterval(src config.Source) (time.Duration, time.Duration) {
	timeout := c.ExportTimeout
	interval := c.ExportInterval
	if timeout > 0 && interval > 0 {
		return timeout, interval
	}

	envTimeout, envInterval := exportDefaults(src)
	if timeout <= 0 {
		timeout = envTimeout
	}
	if interval <= 0 {
		interval = envInterval
	}
	return timeout, interval
}

type exportEnv struct {
	Timeout  string `config:"OTEL_METRIC_EXPORT_TIMEOUT"`
	Interval string `config:"OTEL_METRIC_EXPORT_INTERVAL"`
}

// exportDefaults resolves the export timeout and interval from the given
// environment snapshot. The variables hold whole seconds. Absent or
// malformed values silently fall back to the documented defaults instead
// of returning an error.
func exportDefaults(src config.Source) (timeout, interval time.Duration) {
	timeout = DefaultExportTimeout
	interval = DefaultExportInterval

	m, err := config.Read(src)
	if err != nil {
		return
	}

	var env exportEnv
	err = m.Unmarshal(&env)
	if err != nil {
		return
	}

	if secs, err := strconv.ParseUint(env.Timeout, 10, 32); err == nil {
		timeout = time.Duration(secs) * time.Second
	}
	if secs, err := strconv.ParseUint(env.Interval, 10, 32); err == nil {
		interval = time.Duration(secs) * time.Second
	}
	return
}

// newHandle attaches the exporter to a periodic reader and finalizes the
// meter provider. All transport variants share this assembly.
func newHandle(ctx context.Context, cfg Common, interval time.Duration, exporter sdkmetric.Exporter) (*Handle, error) {
	res, err := resource.New(
		ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, BuildError{Cause: err}
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(interval),
	)

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	return &Handle{MeterProvider: mp}, nil
}

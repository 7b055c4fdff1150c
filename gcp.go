// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelpush

import (
	"context"

	"github.com/z5labs/otelpush/config"

	mexporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/metric"
	"go.opentelemetry.io/contrib/detectors/gcp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/api/option"
)

// GoogleCloudConfig is the config for the Google Cloud Initializer.
type GoogleCloudConfig struct {
	Common

	ProjectId string `config:"projectId"`
}

// GoogleCloudOption are options for the Google Cloud Initializer.
type GoogleCloudOption interface {
	ApplyGoogleCloud(*GoogleCloudConfig)
}

type gcpOptionFunc func(*GoogleCloudConfig)

func (f gcpOptionFunc) ApplyGoogleCloud(cfg *GoogleCloudConfig) {
	f(cfg)
}

// GoogleCloudProjectId configures the Google Cloud Project ID.
func GoogleCloudProjectId(id string) GoogleCloudOption {
	return gcpOptionFunc(func(cfg *GoogleCloudConfig) {
		cfg.ProjectId = id
	})
}

// GoogleCloud returns an [Initializer] for pushing metrics directly to
// Cloud Monitoring. The export timeout does not apply here since the
// Cloud Monitoring client manages its own request deadlines.
func GoogleCloud(opts ...GoogleCloudOption) Initializer {
	cfg := GoogleCloudConfig{}
	for _, opt := range opts {
		opt.ApplyGoogleCloud(&cfg)
	}
	return cfg
}

// Init implements the [Initializer] interface.
func (cfg GoogleCloudConfig) Init(ctx context.Context) (*Handle, error) {
	_, interval := cfg.timeoutAndInterval(config.FromEnv())

	exporter, err := mexporter.New(
		mexporter.WithProjectID(cfg.ProjectId),
		mexporter.WithMonitoringClientOptions(option.WithTelemetryDisabled()),
	)
	if err != nil {
		return nil, BuildError{Cause: err}
	}

	res, err := resource.New(
		ctx,
		resource.WithDetectors(gcp.NewDetector()),
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

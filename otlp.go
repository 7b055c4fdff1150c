// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelpush

import (
	"context"
	"net/http"
	"time"

	"github.com/z5labs/otelpush/config"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"google.golang.org/grpc"
)

// HTTPConfig
type HTTPConfig struct {
	Common

	// Endpoint is the full collector URL e.g. "http://localhost:4318".
	Endpoint string `config:"endpoint"`

	// Insecure disables client transport security.
	Insecure bool `config:"insecure"`

	// Client is the underlying http.Client used for exporting.
	Client *http.Client
}

// HTTPOption
type HTTPOption interface {
	ApplyHTTP(*HTTPConfig)
}

type httpOptionFunc func(*HTTPConfig)

func (f httpOptionFunc) ApplyHTTP(cfg *HTTPConfig) {
	f(cfg)
}

// HTTPClient configures the http.Client used for exporting metric data.
// See package [github.com/z5labs/otelpush/httpclient] for a client with
// retries and a circuit breaker on the export path.
func HTTPClient(c *http.Client) HTTPOption {
	return httpOptionFunc(func(cfg *HTTPConfig) {
		cfg.Client = c
	})
}

// GRPCConfig
type GRPCConfig struct {
	Common

	// Endpoint is the full collector URL e.g. "http://localhost:4317".
	Endpoint string `config:"endpoint"`

	// Insecure disables client transport security.
	Insecure bool `config:"insecure"`

	// Conn is the client connection used for exporting. Endpoint and
	// Insecure are ignored when Conn is set.
	Conn *grpc.ClientConn
}

// GRPCOption
type GRPCOption interface {
	ApplyGRPC(*GRPCConfig)
}

type grpcOptionFunc func(*GRPCConfig)

func (f grpcOptionFunc) ApplyGRPC(cfg *GRPCConfig) {
	f(cfg)
}

// GRPCConn configures the client connection used for exporting metric data.
// The caller remains responsible for closing the connection after the
// returned [Handle] has been shut down.
func GRPCConn(conn *grpc.ClientConn) GRPCOption {
	return grpcOptionFunc(func(cfg *GRPCConfig) {
		cfg.Conn = conn
	})
}

// TransportOption is an option which applies to both OTLP transports.
type TransportOption interface {
	HTTPOption
	GRPCOption
}

type endpointOption string

func (o endpointOption) ApplyHTTP(cfg *HTTPConfig) {
	cfg.Endpoint = string(o)
}

func (o endpointOption) ApplyGRPC(cfg *GRPCConfig) {
	cfg.Endpoint = string(o)
}

// Endpoint configures the full URL of the collector endpoint.
func Endpoint(url string) TransportOption {
	return endpointOption(url)
}

type insecureOption struct{}

func (insecureOption) ApplyHTTP(cfg *HTTPConfig) {
	cfg.Insecure = true
}

func (insecureOption) ApplyGRPC(cfg *GRPCConfig) {
	cfg.Insecure = true
}

// Insecure disables client transport security. TLS is recommended in production.
func Insecure() TransportOption {
	return insecureOption{}
}

// HTTP returns an [Initializer] for pushing metrics to an OTLP collector
// over HTTP using the binary protobuf encoding.
func HTTP(opts ...HTTPOption) Initializer {
	cfg := HTTPConfig{}
	for _, opt := range opts {
		opt.ApplyHTTP(&cfg)
	}
	return cfg
}

// Init implements the [Initializer] interface.
func (cfg HTTPConfig) Init(ctx context.Context) (*Handle, error) {
	timeout, interval := cfg.timeoutAndInterval(config.FromEnv())

	httpOpts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithTimeout(timeout),
	}
	if cfg.Endpoint != "" {
		httpOpts = append(httpOpts, otlpmetrichttp.WithEndpointURL(cfg.Endpoint))
	}
	if cfg.Insecure {
		httpOpts = append(httpOpts, otlpmetrichttp.WithInsecure())
	}
	if cfg.Client != nil {
		httpOpts = append(httpOpts, otlpmetrichttp.WithHTTPClient(cfg.Client))
	}

	exporter, err := otlpmetrichttp.New(ctx, httpOpts...)
	if err != nil {
		return nil, BuildError{Cause: err}
	}
	return newHandle(ctx, cfg.Common, interval, exporter)
}

// GRPC returns an [Initializer] for pushing metrics to an OTLP collector
// over gRPC using the binary protobuf encoding.
func GRPC(opts ...GRPCOption) Initializer {
	cfg := GRPCConfig{}
	for _, opt := range opts {
		opt.ApplyGRPC(&cfg)
	}
	return cfg
}

// Init implements the [Initializer] interface.
func (cfg GRPCConfig) Init(ctx context.Context) (*Handle, error) {
	timeout, interval := cfg.timeoutAndInterval(config.FromEnv())

	grpcOpts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithTimeout(timeout),
	}
	if cfg.Conn != nil {
		grpcOpts = append(grpcOpts, otlpmetricgrpc.WithGRPCConn(cfg.Conn))
	} else {
		if cfg.Endpoint != "" {
			grpcOpts = append(grpcOpts, otlpmetricgrpc.WithEndpointURL(cfg.Endpoint))
		}
		if cfg.Insecure {
			grpcOpts = append(grpcOpts, otlpmetricgrpc.WithInsecure())
		}
	}

	exporter, err := otlpmetricgrpc.New(ctx, grpcOpts...)
	if err != nil {
		return nil, BuildError{Cause: err}
	}
	return newHandle(ctx, cfg.Common, interval, exporter)
}

// InitHTTP initializes push based metric exporting over OTLP HTTP.
//
// The export timeout and flush interval are resolved from the
// OTEL_METRIC_EXPORT_TIMEOUT and OTEL_METRIC_EXPORT_INTERVAL environment
// variables. To set them from within code use [InitHTTPWithTimeoutPeriod].
func InitHTTP(ctx context.Context, endpoint string) (*Handle, error) {
	return HTTP(Endpoint(endpoint)).Init(ctx)
}

// InitHTTPWithTimeoutPeriod initializes push based metric exporting over
// OTLP HTTP with the given export timeout and flush period.
func InitHTTPWithTimeoutPeriod(ctx context.Context, endpoint string, timeout, period time.Duration) (*Handle, error) {
	return HTTP(
		Endpoint(endpoint),
		ExportTimeout(timeout),
		ExportInterval(period),
	).Init(ctx)
}

// InitGRPC initializes push based metric exporting over OTLP gRPC.
//
// The export timeout and flush interval are resolved from the
// OTEL_METRIC_EXPORT_TIMEOUT and OTEL_METRIC_EXPORT_INTERVAL environment
// variables. To set them from within code use [InitGRPCWithTimeoutPeriod].
func InitGRPC(ctx context.Context, endpoint string) (*Handle, error) {
	return GRPC(Endpoint(endpoint)).Init(ctx)
}

// InitGRPCWithTimeoutPeriod initializes push based metric exporting over
// OTLP gRPC with the given export timeout and flush period.
func InitGRPCWithTimeoutPeriod(ctx context.Context, endpoint string, timeout, period time.Duration) (*Handle, error) {
	return GRPC(
		Endpoint(endpoint),
		ExportTimeout(timeout),
		ExportInterval(period),
	).Init(ctx)
}

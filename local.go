// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelpush

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/z5labs/otelpush/config"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
)

// LocalConfig
type LocalConfig struct {
	Common

	// Out is where metric data is written. Defaults to os.Stdout.
	Out io.Writer

	// Pretty indents the written JSON.
	Pretty bool `config:"pretty"`
}

// LocalOption
type LocalOption interface {
	ApplyLocal(*LocalConfig)
}

type localOptionFunc func(*LocalConfig)

func (f localOptionFunc) ApplyLocal(cfg *LocalConfig) {
	f(cfg)
}

// Out configures where metric data is written.
func Out(w io.Writer) LocalOption {
	return localOptionFunc(func(cfg *LocalConfig) {
		cfg.Out = w
	})
}

// PrettyPrint indents the written JSON for human consumption.
func PrettyPrint() LocalOption {
	return localOptionFunc(func(cfg *LocalConfig) {
		cfg.Pretty = true
	})
}

// Local returns an [Initializer] which writes metrics to an [io.Writer]
// instead of pushing them to a remote collector. It is meant for local
// development and tests.
func Local(opts ...LocalOption) Initializer {
	cfg := LocalConfig{
		Out: os.Stdout,
	}
	for _, opt := range opts {
		opt.ApplyLocal(&cfg)
	}
	return cfg
}

// Init implements the [Initializer] interface.
func (cfg LocalConfig) Init(ctx context.Context) (*Handle, error) {
	_, interval := cfg.timeoutAndInterval(config.FromEnv())

	enc := json.NewEncoder(cfg.Out)
	if cfg.Pretty {
		enc.SetIndent("", "\t")
	}

	exporter, err := stdoutmetric.New(
		stdoutmetric.WithEncoder(enc),
	)
	if err != nil {
		return nil, BuildError{Cause: err}
	}
	return newHandle(ctx, cfg.Common, interval, exporter)
}

// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelpush

import (
	"context"
	"errors"
	"sync"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"golang.org/x/sync/errgroup"
)

// Handle wraps a configured [sdkmetric.MeterProvider] and guarantees it is
// shut down at most once. All provider operations, such as [sdkmetric.MeterProvider.Meter]
// and [sdkmetric.MeterProvider.ForceFlush], pass through unchanged.
//
// Callers own the returned handle and are expected to release it when they
// stop emitting metrics:
//
//	mp, err := otelpush.InitHTTP(ctx, endpoint)
//	if err != nil {
//		return err
//	}
//	defer mp.Shutdown(ctx)
type Handle struct {
	*sdkmetric.MeterProvider

	shutdownOnce sync.Once
}

// Shutdown flushes any remaining metric data and releases the provider's
// resources. Only the first call reaches the underlying provider; every
// later call is a no-op returning nil. This makes the usual pattern of
// deferring Shutdown safe even if it was already called explicitly, since
// the provider itself errors on redundant shutdown.
func (h *Handle) Shutdown(ctx context.Context) error {
	var err error
	h.shutdownOnce.Do(func() {
		err = h.MeterProvider.Shutdown(ctx)
	})
	if err == nil {
		return nil
	}

	// The provider may have already been shut down through a direct call
	// on the embedded provider. That is an expected redundant shutdown,
	// not a fault.
	if errors.Is(err, sdkmetric.ErrReaderShutdown) {
		return nil
	}
	return err
}

// ShutdownAll shuts the given handles down concurrently and returns any
// and all errors joined together. Nil handles are skipped.
func ShutdownAll(ctx context.Context, handles ...*Handle) error {
	var g errgroup.Group
	for _, h := range handles {
		if h == nil {
			continue
		}

		h := h
		g.Go(func() error {
			return h.Shutdown(ctx)
		})
	}
	return g.Wait()
}

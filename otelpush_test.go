// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelpush

import (
	"errors"
	"testing"
	"time"

	"github.com/z5labs/otelpush/config"

	"github.com/stretchr/testify/assert"
)

func environSnapshot(pairs ...string) config.Source {
	return config.FromEnviron(func() []string {
		return pairs
	})
}

func TestExportDefaults(t *testing.T) {
	testCases := []struct {
		name             string
		environ          []string
		expectedTimeout  time.Duration
		expectedInterval time.Duration
	}{
		{
			name:             "both unset",
			expectedTimeout:  DefaultExportTimeout,
			expectedInterval: DefaultExportInterval,
		},
		{
			name:             "interval set to a valid number of seconds",
			environ:          []string{intervalEnvVar + "=30"},
			expectedTimeout:  DefaultExportTimeout,
			expectedInterval: 30 * time.Second,
		},
		{
			name:             "both set to valid numbers of seconds",
			environ:          []string{timeoutEnvVar + "=5", intervalEnvVar + "=10"},
			expectedTimeout:  5 * time.Second,
			expectedInterval: 10 * time.Second,
		},
		{
			name:             "timeout set to a non numeric value",
			environ:          []string{timeoutEnvVar + "=abc"},
			expectedTimeout:  DefaultExportTimeout,
			expectedInterval: DefaultExportInterval,
		},
		{
			name:             "timeout set to a negative value",
			environ:          []string{timeoutEnvVar + "=-5"},
			expectedTimeout:  DefaultExportTimeout,
			expectedInterval: DefaultExportInterval,
		},
		{
			name:             "interval set to zero",
			environ:          []string{intervalEnvVar + "=0"},
			expectedTimeout:  DefaultExportTimeout,
			expectedInterval: 0,
		},
		{
			name:             "value set with surrounding whitespace",
			environ:          []string{intervalEnvVar + "= 30"},
			expectedTimeout:  DefaultExportTimeout,
			expectedInterval: DefaultExportInterval,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			timeout, interval := exportDefaults(environSnapshot(tc.environ...))

			assert.Equal(t, tc.expectedTimeout, timeout)
			assert.Equal(t, tc.expectedInterval, interval)
		})
	}
}

func TestCommon_timeoutAndInterval(t *testing.T) {
	t.Run("will prefer explicitly configured values", func(t *testing.T) {
		t.Run("if both are set", func(t *testing.T) {
			c := Common{
				ExportTimeout:  5 * time.Second,
				ExportInterval: 10 * time.Second,
			}

			timeout, interval := c.timeoutAndInterval(environSnapshot(
				timeoutEnvVar+"=1",
				intervalEnvVar+"=2",
			))

			assert.Equal(t, 5*time.Second, timeout)
			assert.Equal(t, 10*time.Second, interval)
		})
	})

	t.Run("will resolve from the environment", func(t *testing.T) {
		t.Run("if neither is set", func(t *testing.T) {
			var c Common

			timeout, interval := c.timeoutAndInterval(environSnapshot(
				intervalEnvVar + "=30",
			))

			assert.Equal(t, DefaultExportTimeout, timeout)
			assert.Equal(t, 30*time.Second, interval)
		})

		t.Run("if only the timeout is set", func(t *testing.T) {
			c := Common{
				ExportTimeout: 5 * time.Second,
			}

			timeout, interval := c.timeoutAndInterval(environSnapshot(
				intervalEnvVar + "=30",
			))

			assert.Equal(t, 5*time.Second, timeout)
			assert.Equal(t, 30*time.Second, interval)
		})
	})
}

func TestBuildError(t *testing.T) {
	t.Run("will unwrap to its cause", func(t *testing.T) {
		cause := errors.New("invalid endpoint")
		err := BuildError{Cause: cause}

		if !assert.ErrorIs(t, err, cause) {
			return
		}
		assert.Contains(t, err.Error(), cause.Error())
	})
}

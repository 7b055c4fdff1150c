// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

func serve(f func(http.ResponseWriter, *http.Request)) (addr string, stop func(), err error) {
	ls, err := net.Listen("tcp", ":0")
	if err != nil {
		return "", nil, err
	}
	addr = ls.Addr().String()

	mux := http.NewServeMux()
	mux.HandleFunc("/", f)
	s := &http.Server{
		Handler: mux,
	}
	stop = func() {
		s.Shutdown(context.Background())
	}

	go func() {
		s.Serve(ls)
	}()
	return
}

func TestTimeout(t *testing.T) {
	t.Run("will timeout", func(t *testing.T) {
		t.Run("if the timeout is set to be greater than zero", func(t *testing.T) {
			timeout := 500 * time.Millisecond
			addr, stop, err := serve(func(w http.ResponseWriter, r *http.Request) {
				<-time.After(2 * timeout)
			})
			if !assert.Nil(t, err) {
				return
			}
			defer stop()

			client := New(Timeout(timeout))
			_, err = client.Get(fmt.Sprintf("http://%s/", addr))

			var nerr net.Error
			if !assert.ErrorAs(t, err, &nerr) {
				return
			}
			if !assert.True(t, nerr.Timeout()) {
				return
			}
		})
	})
}

func TestRetry(t *testing.T) {
	t.Run("will retry the request", func(t *testing.T) {
		t.Run("if the server responds with a 500", func(t *testing.T) {
			var attempts atomic.Int64
			addr, stop, err := serve(func(w http.ResponseWriter, r *http.Request) {
				if attempts.Add(1) < 3 {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				w.WriteHeader(http.StatusOK)
			})
			if !assert.Nil(t, err) {
				return
			}
			defer stop()

			client := New(
				MaxRetries(3),
				RetryWaitMin(10*time.Millisecond),
				RetryWaitMax(20*time.Millisecond),
			)

			resp, err := client.Get(fmt.Sprintf("http://%s/", addr))
			if !assert.Nil(t, err) {
				return
			}
			defer resp.Body.Close()

			if !assert.Equal(t, http.StatusOK, resp.StatusCode) {
				return
			}
			assert.Equal(t, int64(3), attempts.Load())
		})
	})
}

func TestCircuitBreaker(t *testing.T) {
	t.Run("will open the circuit", func(t *testing.T) {
		t.Run("if the server keeps responding with a 500", func(t *testing.T) {
			addr, stop, err := serve(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			})
			if !assert.Nil(t, err) {
				return
			}
			defer stop()

			client := New(TripAfter(2))

			// Error status codes count against the circuit but the
			// responses are still returned to the caller.
			for i := 0; i < 2; i++ {
				resp, err := client.Get(fmt.Sprintf("http://%s/", addr))
				if !assert.Nil(t, err) {
					return
				}
				resp.Body.Close()
				if !assert.Equal(t, http.StatusInternalServerError, resp.StatusCode) {
					return
				}
			}

			_, err = client.Get(fmt.Sprintf("http://%s/", addr))
			assert.ErrorIs(t, err, gobreaker.ErrOpenState)
		})
	})

	t.Run("will keep the circuit closed", func(t *testing.T) {
		t.Run("if the server responds with a 200", func(t *testing.T) {
			addr, stop, err := serve(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			if !assert.Nil(t, err) {
				return
			}
			defer stop()

			client := New(TripAfter(2))

			for i := 0; i < 5; i++ {
				resp, err := client.Get(fmt.Sprintf("http://%s/", addr))
				if !assert.Nil(t, err) {
					return
				}
				resp.Body.Close()
				if !assert.Equal(t, http.StatusOK, resp.StatusCode) {
					return
				}
			}
		})
	})
}

func TestLogging(t *testing.T) {
	t.Run("will log requests", func(t *testing.T) {
		t.Run("if a debug level log handler is set", func(t *testing.T) {
			addr, stop, err := serve(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			if !assert.Nil(t, err) {
				return
			}
			defer stop()

			var buf bytes.Buffer
			client := New(
				Name("export"),
				LogHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})),
			)

			resp, err := client.Get(fmt.Sprintf("http://%s/", addr))
			if !assert.Nil(t, err) {
				return
			}
			resp.Body.Close()

			assert.Contains(t, buf.String(), "request sent")
			assert.Contains(t, buf.String(), "response received")
			assert.Contains(t, buf.String(), "export")
		})
	})
}

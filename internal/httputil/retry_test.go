// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Use a tiny base delay so tests finish quickly.
	RetryBaseDelay = 1 * time.Millisecond
}

func countingServer(t *testing.T, handler func(n int32, w http.ResponseWriter)) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handler(atomic.AddInt32(&calls, 1), w)
	}))
	t.Cleanup(ts.Close)
	return ts, &calls
}

func TestDoWithRetry(t *testing.T) {
	tests := []struct {
		name       string
		handler    func(n int32, w http.ResponseWriter)
		maxRetries int
		wantStatus int
		wantCalls  int32
	}{
		{
			name:       "immediate success",
			handler:    func(_ int32, w http.ResponseWriter) { w.WriteHeader(http.StatusOK) },
			maxRetries: 5,
			wantStatus: http.StatusOK,
			wantCalls:  1,
		},
		{
			name: "429 then 200",
			handler: func(n int32, w http.ResponseWriter) {
				if n <= 2 {
					w.WriteHeader(http.StatusTooManyRequests)
					return
				}
				w.WriteHeader(http.StatusOK)
			},
			maxRetries: 5,
			wantStatus: http.StatusOK,
			wantCalls:  3,
		},
		{
			name: "503 then 200",
			handler: func(n int32, w http.ResponseWriter) {
				if n == 1 {
					w.WriteHeader(http.StatusServiceUnavailable)
					return
				}
				w.WriteHeader(http.StatusOK)
			},
			maxRetries: 5,
			wantStatus: http.StatusOK,
			wantCalls:  2,
		},
		{
			name:       "exhausts retries",
			handler:    func(_ int32, w http.ResponseWriter) { w.WriteHeader(http.StatusTooManyRequests) },
			maxRetries: 3,
			wantStatus: http.StatusTooManyRequests,
			wantCalls:  4,
		},
		{
			name:       "default max retries",
			handler:    func(_ int32, w http.ResponseWriter) { w.WriteHeader(http.StatusTooManyRequests) },
			maxRetries: 0,
			wantStatus: http.StatusTooManyRequests,
			wantCalls:  6,
		},
		{
			name:       "500 passes through",
			handler:    func(_ int32, w http.ResponseWriter) { w.WriteHeader(http.StatusInternalServerError) },
			maxRetries: 5,
			wantStatus: http.StatusInternalServerError,
			wantCalls:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, calls := countingServer(t, tt.handler)

			req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
			require.NoError(t, err)

			resp, err := DoWithRetry(context.Background(), ts.Client(), req, tt.maxRetries)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(calls))
		})
	}
}

func TestDoWithRetry_ContextCancelled(t *testing.T) {
	ts, _ := countingServer(t, func(_ int32, w http.ResponseWriter) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	old := RetryBaseDelay
	RetryBaseDelay = 500 * time.Millisecond
	defer func() { RetryBaseDelay = old }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	_, err = DoWithRetry(ctx, ts.Client(), req, 5)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBackoff(t *testing.T) {
	old, oldMax := RetryBaseDelay, MaxRetryAfter
	RetryBaseDelay, MaxRetryAfter = time.Second, 10*time.Second
	defer func() { RetryBaseDelay, MaxRetryAfter = old, oldMax }()

	assert.Equal(t, time.Second, backoff(0, ""))
	assert.Equal(t, 4*time.Second, backoff(2, ""))
	assert.Equal(t, 3*time.Second, backoff(2, "3"))
	assert.Equal(t, 10*time.Second, backoff(0, "120"), "Retry-After is capped")
	assert.Equal(t, 2*time.Second, backoff(1, "Wed, 21 Oct 2015 07:28:00 GMT"), "HTTP dates fall back to exponential")
}

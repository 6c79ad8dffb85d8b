// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostLimiter_Disabled(t *testing.T) {
	l := NewHostLimiter(0, 0)
	start := time.Now()
	for i := 0; i < 20; i++ {
		require.NoError(t, l.Wait(context.Background(), "http://example.org/a"))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestHostLimiter_PerHost(t *testing.T) {
	l := NewHostLimiter(10, 1)
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx, "http://a.example/1"))
	start := time.Now()
	require.NoError(t, l.Wait(ctx, "http://b.example/1"))
	assert.Less(t, time.Since(start), 50*time.Millisecond, "other hosts are not throttled")

	start = time.Now()
	require.NoError(t, l.Wait(ctx, "http://a.example/2"))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond, "same host waits for a token")
}

func TestHostLimiter_ContextCancelled(t *testing.T) {
	l := NewHostLimiter(0.1, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.NoError(t, l.Wait(ctx, "http://a.example/1"))
	assert.Error(t, l.Wait(ctx, "http://a.example/2"))
}

func TestHostLimiter_BadURL(t *testing.T) {
	l := NewHostLimiter(1, 1)
	assert.Error(t, l.Wait(context.Background(), "://bad"))
}

func TestSleep(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), time.Millisecond))
	assert.NoError(t, Sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}

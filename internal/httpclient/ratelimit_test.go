package httpclient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostLimiter_SeparateBuckets(t *testing.T) {
	h := NewHostLimiter(0.1, 1)
	ctx := context.Background()

	require.NoError(t, h.Wait(ctx, "api.figshare.com"))
	require.NoError(t, h.Wait(ctx, "fup-eu-west-1.figshare.com"), "a second host has its own burst")
	assert.Equal(t, 2, h.Hosts())

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.Error(t, h.Wait(waitCtx, "api.figshare.com"), "first host is exhausted")
}

func TestHostLimiter_ReusesBucket(t *testing.T) {
	h := NewHostLimiter(1000, 2)

	for i := 0; i < 5; i++ {
		require.NoError(t, h.Wait(context.Background(), "api.figshare.com"))
	}
	assert.Equal(t, 1, h.Hosts())
}

func TestHostLimiter_CancelledContext(t *testing.T) {
	h := NewHostLimiter(10, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, h.Wait(ctx, "api.figshare.com"))
}

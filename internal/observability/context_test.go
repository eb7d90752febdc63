package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDContext(t *testing.T) {
	t.Run("stores and retrieves request ID", func(t *testing.T) {
		ctx := context.Background()
		ctx = WithRequestID(ctx, "req-123")

		result := RequestIDFromContext(ctx)
		assert.Equal(t, "req-123", result)
	})

	t.Run("returns empty string when not set", func(t *testing.T) {
		ctx := context.Background()
		result := RequestIDFromContext(ctx)
		assert.Equal(t, "", result)
	})
}

func TestDepositIDContext(t *testing.T) {
	t.Run("stores and retrieves deposit ID", func(t *testing.T) {
		ctx := WithDepositID(context.Background(), "dep-1")
		assert.Equal(t, "dep-1", DepositIDFromContext(ctx))
	})

	t.Run("returns empty string when not set", func(t *testing.T) {
		assert.Equal(t, "", DepositIDFromContext(context.Background()))
	})

	t.Run("independent of request ID", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-1")
		ctx = WithDepositID(ctx, "dep-2")

		assert.Equal(t, "req-1", RequestIDFromContext(ctx))
		assert.Equal(t, "dep-2", DepositIDFromContext(ctx))
	})
}

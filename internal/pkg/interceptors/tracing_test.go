package interceptors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/jcmexdev/payment-service/internal/pkg/interceptors/constants"
)

func TestTraceServerInterceptorCopiesMetadata(t *testing.T) {
	md := metadata.Pairs(
		constants.HeaderRequestID, "req-42",
		constants.HeaderIdempotencyKey, "idem-7",
	)
	ctx := metadata.NewIncomingContext(context.Background(), md)

	var seen context.Context
	handler := func(ctx context.Context, req any) (any, error) {
		seen = ctx
		return "ok", nil
	}

	res, err := TraceServerInterceptor()(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/payment.v1.Payment/GetOrder"}, handler)
	require.NoError(t, err)
	assert.Equal(t, "ok", res)

	assert.Equal(t, "req-42", seen.Value(constants.CtxRequestID))
	assert.Equal(t, "idem-7", seen.Value(constants.CtxIdempotencyKey))
	assert.Equal(t, "req-42", RequestID(seen))
	assert.Equal(t, "idem-7", IdempotencyKey(seen))
}

func TestGetMetadataValueFallbacks(t *testing.T) {
	t.Run("typed context value", func(t *testing.T) {
		ctx := WithRequestMetadata(context.Background(), "r1", "k1")
		assert.Equal(t, "r1", RequestID(ctx))
		assert.Equal(t, "k1", IdempotencyKey(ctx))
	})

	t.Run("outgoing metadata", func(t *testing.T) {
		ctx := metadata.AppendToOutgoingContext(context.Background(), constants.HeaderRequestID, "r2")
		assert.Equal(t, "r2", RequestID(ctx))
	})

	t.Run("absent", func(t *testing.T) {
		assert.Empty(t, IdempotencyKey(context.Background()))
	})
}

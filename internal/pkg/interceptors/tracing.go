package interceptors

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/jcmexdev/payment-service/internal/pkg/interceptors/constants"
)

// TraceServerInterceptor copies the request id and idempotency key from the
// incoming gRPC metadata into the context, under the same keys the HTTP
// middleware uses.
func TraceServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		requestID := firstIncoming(ctx, constants.HeaderRequestID)
		idempotencyKey := firstIncoming(ctx, constants.HeaderIdempotencyKey)

		ctx = WithRequestMetadata(ctx, requestID, idempotencyKey)

		slog.InfoContext(ctx, "grpc request",
			"method", info.FullMethod,
			"request_id", requestID,
			"idempotency_key", idempotencyKey,
		)

		return handler(ctx, req)
	}
}

// WithRequestMetadata stores both values under the typed context keys.
func WithRequestMetadata(ctx context.Context, requestID, idempotencyKey string) context.Context {
	ctx = context.WithValue(ctx, constants.CtxRequestID, requestID)
	return context.WithValue(ctx, constants.CtxIdempotencyKey, idempotencyKey)
}

func RequestID(ctx context.Context) string {
	return GetMetadataValue(ctx, constants.HeaderRequestID)
}

func IdempotencyKey(ctx context.Context) string {
	return GetMetadataValue(ctx, constants.HeaderIdempotencyKey)
}

// GetMetadataValue looks the key up in the typed context values first, then
// in incoming and outgoing gRPC metadata.
func GetMetadataValue(ctx context.Context, key string) string {
	var ctxKey any
	switch key {
	case constants.HeaderRequestID:
		ctxKey = constants.CtxRequestID
	case constants.HeaderIdempotencyKey:
		ctxKey = constants.CtxIdempotencyKey
	}
	if ctxKey != nil {
		if v, ok := ctx.Value(ctxKey).(string); ok && v != "" {
			return v
		}
	}

	if v := firstIncoming(ctx, key); v != "" {
		return v
	}

	if md, ok := metadata.FromOutgoingContext(ctx); ok {
		if ids := md.Get(key); len(ids) > 0 {
			return ids[0]
		}
	}
	return ""
}

func firstIncoming(ctx context.Context, key string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(key); len(ids) > 0 {
			return ids[0]
		}
	}
	return ""
}

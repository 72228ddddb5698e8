package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"google.golang.org/grpc/metadata"

	"github.com/jcmexdev/payment-service/internal/pkg/interceptors"
	"github.com/jcmexdev/payment-service/internal/pkg/interceptors/constants"
)

// AttachTracingMetadata copies chi's request id and the X-Idempotency-Key
// header into the typed context keys, and into outgoing gRPC metadata for
// any downstream call made while serving the request.
func AttachTracingMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		idempotencyKey := r.Header.Get(constants.HeaderIdempotencyKey)

		ctx := interceptors.WithRequestMetadata(r.Context(), requestID, idempotencyKey)
		ctx = metadata.AppendToOutgoingContext(ctx, constants.HeaderRequestID, requestID)
		if idempotencyKey != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, constants.HeaderIdempotencyKey, idempotencyKey)
		}

		w.Header().Set(constants.HeaderRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Package constants names the request metadata that travels across the HTTP,
// gRPC and Kafka boundaries.
package constants

// Header names. gRPC metadata keys are lowercase and HTTP header lookups
// ignore case, so one spelling serves every transport.
const (
	HeaderRequestID      = "x-request-id"
	HeaderIdempotencyKey = "x-idempotency-key"
)

type ctxKey int

// Context keys holding the header values once a boundary has read them.
const (
	CtxRequestID ctxKey = iota + 1
	CtxIdempotencyKey
)

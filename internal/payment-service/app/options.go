// Package app holds the use cases of the payment service: order creation and
// the customer, order and product queries.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/payment-service/internal/payment-service/core/domain"
	"github.com/jcmexdev/payment-service/internal/pkg/cache"
	"github.com/jcmexdev/payment-service/internal/pkg/metrics"
)

const tracerName = "github.com/jcmexdev/payment-service/internal/payment-service/app"

const (
	opCreateOrder = "create-order"
	opCustomer    = "customer"
)

const (
	defaultReplayWait = 5 * time.Second
	replayPoll        = 25 * time.Millisecond
)

type options struct {
	cache      cache.Cache
	ttl        time.Duration
	replayWait time.Duration
	replayPoll time.Duration
	metrics    *metrics.Registry
	tracer     trace.Tracer
}

type Option func(*options)

// WithCache enables the Redis-backed behaviour of a service: idempotency keys
// for OrderService, read-through lookups for CustomerService. ttl is the
// lifetime of the entries that service writes.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(o *options) {
		o.cache = c
		o.ttl = ttl
	}
}

// WithIdempotencyWait bounds how long a request whose idempotency key is held
// by another in-flight request waits for that request to finish before it
// fails with domain.ErrConflict.
func WithIdempotencyWait(d time.Duration) Option {
	return func(o *options) { o.replayWait = d }
}

func WithMetrics(m *metrics.Registry) Option {
	return func(o *options) { o.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

func buildOptions(opts []Option) options {
	o := options{
		tracer:     otel.Tracer(tracerName),
		replayWait: defaultReplayWait,
		replayPoll: replayPoll,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// parseID separates a malformed identifier from an absent entity.
func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", domain.ErrInvalidUUID, raw)
	}
	return id, nil
}

func notFound(entity string, id uuid.UUID) error {
	return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
}

// customerKey is shared by the customer read-through cache and the order
// service, which drops the entry when the customer gains an order.
func customerKey(c cache.Cache, id uuid.UUID) string {
	return c.GenerateKey(opCustomer, id.String())
}

func (o options) forget(ctx context.Context, key string) {
	if o.cache == nil {
		return
	}
	if err := o.cache.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "cache delete failed", "key", key, "error", err)
	}
}

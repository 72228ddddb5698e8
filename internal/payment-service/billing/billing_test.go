package billing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/payment-service/internal/payment-service/core/domain"
	"github.com/jcmexdev/payment-service/internal/pkg/eventbus"
	"github.com/jcmexdev/payment-service/internal/pkg/interceptors"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func persistedOrder() domain.Order {
	id := uuid.New()
	return domain.Order{
		ID:          id,
		Description: "book",
		Amount:      decimal.RequireFromString("19.99"),
		CustomerID:  uuid.New(),
		Products: []domain.Product{{
			ID:      uuid.New(),
			Name:    "Atlas",
			Price:   decimal.RequireFromString("19.99"),
			OrderID: uuid.NullUUID{UUID: id, Valid: true},
		}},
	}
}

func TestNewBillRequestedStampsRequestAndTrace(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})

	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = interceptors.WithRequestMetadata(ctx, "req-1", "")

	o := persistedOrder()
	e := NewBillRequested(ctx, o)

	assert.Equal(t, BillRequestedEvent, e.EventName())
	assert.Equal(t, o.ID, e.Order.ID)
	assert.Equal(t, "req-1", e.RequestID)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", e.TraceID)
	assert.Equal(t, "00f067aa0ba902b7", e.SpanID)
	assert.False(t, e.RequestedAt.IsZero())
}

func TestExtractTraceInfoWithoutSpan(t *testing.T) {
	assert.Equal(t, TraceInfo{}, ExtractTraceInfo(context.Background()))
}

func TestLogBill(t *testing.T) {
	assert.NoError(t, LogBill(context.Background(), NewBillRequested(context.Background(), persistedOrder())))
}

func TestKafkaForwarderWritesOrderKeyedMessage(t *testing.T) {
	w := &fakeWriter{}
	f := NewKafkaForwarderWith(w)

	ctx := interceptors.WithRequestMetadata(context.Background(), "req-9", "")
	o := persistedOrder()
	require.NoError(t, f.Handle(ctx, NewBillRequested(ctx, o)))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, o.ID.String(), string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "req-9", string(msg.Headers[0].Value))

	var body BillMessage
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, o.ID.String(), body.OrderID)
	assert.Equal(t, o.CustomerID.String(), body.CustomerID)
	assert.True(t, o.Amount.Equal(body.Amount))
	assert.Equal(t, 1, body.Products)

	require.NoError(t, f.Close())
	assert.True(t, w.closed)
}

func TestKafkaForwarderFailureIsAbsorbedByDispatcher(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unreachable")}
	f := NewKafkaForwarderWith(w)

	var failures int
	d := eventbus.New(eventbus.WithFailureHook(func(string, error) { failures++ }))
	var logged int
	eventbus.Subscribe(d, f.Handle)
	eventbus.Subscribe(d, func(ctx context.Context, e BillRequested) error {
		logged++
		return LogBill(ctx, e)
	})

	d.Publish(context.Background(), NewBillRequested(context.Background(), persistedOrder()))

	assert.Equal(t, 1, failures)
	assert.Equal(t, 1, logged)
}

package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/payment-service/internal/pkg/interceptors/constants"
)

const defaultWriteTimeout = 5 * time.Second

// BillMessage is the JSON value written to the billing topic.
type BillMessage struct {
	OrderID     string          `json:"orderId"`
	CustomerID  string          `json:"customerId"`
	Amount      decimal.Decimal `json:"amount"`
	Products    int             `json:"products"`
	RequestID   string          `json:"requestId,omitempty"`
	TraceID     string          `json:"traceId,omitempty"`
	RequestedAt time.Time       `json:"requestedAt"`
}

// messageWriter abstracts kafka.Writer for testability.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaForwarder hands bill requests to a downstream billing system through a
// Kafka topic. It is a listener like any other: a write failure is reported to
// the dispatcher and does not affect the order.
type KafkaForwarder struct {
	writer  messageWriter
	timeout time.Duration
}

// NewKafkaForwarder creates a synchronous writer keyed by order ID.
func NewKafkaForwarder(brokers []string, topic string) *KafkaForwarder {
	return &KafkaForwarder{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
		},
		timeout: defaultWriteTimeout,
	}
}

// NewKafkaForwarderWith is only for tests to inject a fake writer.
func NewKafkaForwarderWith(w messageWriter) *KafkaForwarder {
	return &KafkaForwarder{writer: w, timeout: defaultWriteTimeout}
}

func (f *KafkaForwarder) Handle(ctx context.Context, e BillRequested) error {
	b, err := json.Marshal(BillMessage{
		OrderID:     e.Order.ID.String(),
		CustomerID:  e.Order.CustomerID.String(),
		Amount:      e.Order.Amount,
		Products:    len(e.Order.Products),
		RequestID:   e.RequestID,
		TraceID:     e.TraceID,
		RequestedAt: e.RequestedAt,
	})
	if err != nil {
		return fmt.Errorf("billing: marshal bill message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(e.Order.ID.String()),
		Value: b,
	}
	if e.RequestID != "" {
		msg.Headers = []kafka.Header{{Key: constants.HeaderRequestID, Value: []byte(e.RequestID)}}
	}

	if err := f.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("billing: write bill for order %s: %w", e.Order.ID, err)
	}
	return nil
}

func (f *KafkaForwarder) Close() error {
	return f.writer.Close()
}

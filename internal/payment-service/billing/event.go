// Package billing defines the "bill requested" notification raised after an
// order is persisted, and the listeners that consume it.
package billing

import (
	"context"
	"time"

	"github.com/jcmexdev/payment-service/internal/payment-service/core/domain"
	"github.com/jcmexdev/payment-service/internal/pkg/interceptors"
)

const BillRequestedEvent = "billing.BillRequested"

// BillRequested carries the persisted order, including its generated ID, plus
// the request and trace identifiers of the call that created it.
type BillRequested struct {
	Order       domain.Order
	RequestID   string
	TraceID     string
	SpanID      string
	RequestedAt time.Time
}

func (BillRequested) EventName() string { return BillRequestedEvent }

func NewBillRequested(ctx context.Context, order domain.Order) BillRequested {
	ti := ExtractTraceInfo(ctx)
	return BillRequested{
		Order:       order,
		RequestID:   interceptors.RequestID(ctx),
		TraceID:     ti.TraceID,
		SpanID:      ti.SpanID,
		RequestedAt: time.Now().UTC(),
	}
}

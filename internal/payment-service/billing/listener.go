package billing

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
)

// LogBill is the stub billing consumer: it records that the bill was received
// and "sent" to the customer. No payment provider is involved.
func LogBill(ctx context.Context, e BillRequested) error {
	o := e.Order

	billable := decimal.Zero
	for _, p := range o.Products {
		billable = billable.Add(p.DiscountedPrice())
	}

	slog.InfoContext(ctx, "bill requested received",
		"order_id", o.ID.String(),
		"customer_id", o.CustomerID.String(),
		"amount", o.Amount.String(),
		"products_total", billable.String(),
		"request_id", e.RequestID,
	)
	slog.InfoContext(ctx, "bill sent to customer", "order_id", o.ID.String())
	return nil
}

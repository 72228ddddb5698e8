package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MinDiscount = 0
	MaxDiscount = 100
)

type Product struct {
	ID                 uuid.UUID
	Name               string
	Price              decimal.Decimal
	Description        string
	StockQuantity      int
	PercentageDiscount int
	CreatedAt          time.Time

	// OrderID is the optional parent key; a product may exist unassigned.
	OrderID uuid.NullUUID
}

// DiscountedPrice applies PercentageDiscount to Price.
func (p Product) DiscountedPrice() decimal.Decimal {
	off := decimal.NewFromInt(int64(p.PercentageDiscount)).Div(decimal.NewFromInt(100))
	return p.Price.Sub(p.Price.Mul(off))
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	ID          uuid.UUID
	Description string
	Amount      decimal.Decimal
	CreatedAt   time.Time

	// CustomerID is the mandatory parent key.
	CustomerID uuid.UUID
	// Customer is the parent resolved by the gateway. It never owns anything:
	// its Orders are always empty. Nil when the order is reached through its
	// customer.
	Customer *Customer

	Products []Product
}

// Package dto holds the transfer shapes exchanged at the HTTP and gRPC
// boundaries. Collections are always present in JSON, possibly empty.
package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CustomerDTO struct {
	ID          uuid.UUID  `json:"id,omitzero"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phoneNumber"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"createdAt,omitzero"`
	Orders      []OrderDTO `json:"orders"`
}

type OrderDTO struct {
	ID          uuid.UUID       `json:"id,omitzero"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"createdAt,omitzero"`
	Customer    *CustomerDTO    `json:"customer,omitempty"`
	Products    []ProductDTO    `json:"products"`
}

type ProductDTO struct {
	ID                 uuid.UUID       `json:"id,omitzero"`
	Name               string          `json:"name"`
	Price              decimal.Decimal `json:"price"`
	Description        string          `json:"description"`
	StockQuantity      int             `json:"stockQuantity"`
	PercentageDiscount int             `json:"percentageDiscount"`
	CreatedAt          time.Time       `json:"createdAt,omitzero"`
	Order              *OrderDTO       `json:"order,omitempty"`
}

// PageDTO is the listing envelope.
type PageDTO[T any] struct {
	Items []T `json:"items"`
	Page  int `json:"page"`
	Size  int `json:"size"`
	Total int `json:"total"`
}

// Package domain holds the payment service entity graph.
//
// Ownership flows one way: a Customer owns its Orders and an Order owns its
// Products. Children only keep the key of their parent (Order.CustomerID,
// Product.OrderID); the parent is looked up by key when it is needed, so the
// graph never carries a second ownership edge.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	Active    bool
	Orders    []Order
}

// Snapshot returns the customer's scalar fields with an empty order list.
// Orders use it as their resolved parent so the graph stays acyclic.
func (c Customer) Snapshot() *Customer {
	return &Customer{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
		Active:    c.Active,
		Orders:    []Order{},
	}
}

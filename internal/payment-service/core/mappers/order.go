// Package mappers translates between the entity graph and the transfer
// shapes. Every function is pure. Nested parents are never re-expanded: a
// customer embedded in an order carries no orders, and children listed under
// their parent omit the back-reference entirely.
package mappers

import (
	"github.com/google/uuid"

	"github.com/jcmexdev/payment-service/internal/payment-service/core/domain"
	"github.com/jcmexdev/payment-service/internal/payment-service/core/dto"
)

func OrderToDTO(o domain.Order) dto.OrderDTO {
	out := ownedOrderToDTO(o)
	out.Customer = customerRefToDTO(o)
	return out
}

func OrderFromDTO(d dto.OrderDTO) domain.Order {
	o := ownedOrderFromDTO(d)
	if d.Customer != nil {
		o.CustomerID = d.Customer.ID
		if !isCustomerReference(d.Customer) {
			o.Customer = customerFromDTO(*d.Customer).Snapshot()
		}
	}
	return o
}

func OrdersToDTOs(orders []domain.Order) []dto.OrderDTO {
	return mapSlice(orders, OrderToDTO)
}

func OrdersFromDTOs(orders []dto.OrderDTO) []domain.Order {
	return mapSlice(orders, OrderFromDTO)
}

// ownedOrderToDTO maps an order listed under its customer.
func ownedOrderToDTO(o domain.Order) dto.OrderDTO {
	return dto.OrderDTO{
		ID:          o.ID,
		Description: o.Description,
		Amount:      o.Amount,
		CreatedAt:   o.CreatedAt,
		Products:    mapSlice(o.Products, ownedProductToDTO),
	}
}

func ownedOrderFromDTO(d dto.OrderDTO) domain.Order {
	orderID := nullID(d.ID)
	return domain.Order{
		ID:          d.ID,
		Description: d.Description,
		Amount:      d.Amount,
		CreatedAt:   d.CreatedAt,
		Products: mapSlice(d.Products, func(pd dto.ProductDTO) domain.Product {
			p := ownedProductFromDTO(pd)
			p.OrderID = orderID
			return p
		}),
	}
}

func customerRefToDTO(o domain.Order) *dto.CustomerDTO {
	if o.Customer != nil {
		c := customerScalarsToDTO(*o.Customer)
		return &c
	}
	if o.CustomerID != uuid.Nil {
		return &dto.CustomerDTO{ID: o.CustomerID, Orders: []dto.OrderDTO{}}
	}
	return nil
}

// isCustomerReference reports whether the embedded customer only names its
// key, as clients do when they attach an order to an existing customer.
func isCustomerReference(c *dto.CustomerDTO) bool {
	return c.Name == "" && c.Email == "" && c.PhoneNumber == "" && !c.Active && c.CreatedAt.IsZero()
}

func nullID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}

// mapSlice always returns a non-nil slice of the same length.
func mapSlice[S, T any](in []S, fn func(S) T) []T {
	out := make([]T, len(in))
	for i := range in {
		out[i] = fn(in[i])
	}
	return out
}

package app

import (
	"fmt"
	"net/mail"

	"github.com/google/uuid"

	"github.com/jcmexdev/payment-service/internal/payment-service/core/domain"
	"github.com/jcmexdev/payment-service/internal/payment-service/core/dto"
)

// ValidateOrder lists every problem of an inbound order. It returns nil or a
// *domain.ValidationError matching domain.ErrInvalidOrder.
func ValidateOrder(in dto.OrderDTO) error {
	var v []domain.Violation
	switch {
	case in.Customer == nil:
		v = append(v, domain.Violation{Field: "customer", Reason: "is required"})
	case in.Customer.ID == uuid.Nil:
		v = append(v, domain.Violation{Field: "customer.id", Reason: "is required"})
	}
	if in.Amount.IsNegative() {
		v = append(v, domain.Violation{Field: "amount", Reason: "must not be negative"})
	}
	for i, p := range in.Products {
		v = append(v, productViolations(fmt.Sprintf("products[%d].", i), p)...)
	}
	if len(v) > 0 {
		return domain.InvalidOrder(v...)
	}
	return nil
}

// ValidateCustomer checks a customer submitted for creation.
func ValidateCustomer(in dto.CustomerDTO) error {
	var v []domain.Violation
	if in.Name == "" {
		v = append(v, domain.Violation{Field: "name", Reason: "is required"})
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			v = append(v, domain.Violation{Field: "email", Reason: "is not a valid address"})
		}
	}
	if len(in.Orders) > 0 {
		v = append(v, domain.Violation{Field: "orders", Reason: "must be created through the order endpoint"})
	}
	if len(v) > 0 {
		return domain.InvalidInput(v...)
	}
	return nil
}

// ValidateProduct checks a standalone product submitted for creation.
func ValidateProduct(in dto.ProductDTO) error {
	v := productViolations("", in)
	if in.Name == "" {
		v = append(v, domain.Violation{Field: "name", Reason: "is required"})
	}
	if in.Order != nil && in.Order.ID == uuid.Nil {
		v = append(v, domain.Violation{Field: "order.id", Reason: "is required"})
	}
	if len(v) > 0 {
		return domain.InvalidInput(v...)
	}
	return nil
}

func productViolations(prefix string, p dto.ProductDTO) []domain.Violation {
	var v []domain.Violation
	if p.Price.IsNegative() {
		v = append(v, domain.Violation{Field: prefix + "price", Reason: "must not be negative"})
	}
	if p.StockQuantity < 0 {
		v = append(v, domain.Violation{Field: prefix + "stockQuantity", Reason: "must not be negative"})
	}
	if p.PercentageDiscount < domain.MinDiscount || p.PercentageDiscount > domain.MaxDiscount {
		v = append(v, domain.Violation{
			Field:  prefix + "percentageDiscount",
			Reason: fmt.Sprintf("must be between %d and %d", domain.MinDiscount, domain.MaxDiscount),
		})
	}
	return v
}

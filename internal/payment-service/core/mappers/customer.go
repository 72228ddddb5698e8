package mappers

import (
	"github.com/jcmexdev/payment-service/internal/payment-service/core/domain"
	"github.com/jcmexdev/payment-service/internal/payment-service/core/dto"
)

func CustomerToDTO(c domain.Customer) dto.CustomerDTO {
	out := customerScalarsToDTO(c)
	out.Orders = mapSlice(c.Orders, ownedOrderToDTO)
	return out
}

func CustomerFromDTO(d dto.CustomerDTO) domain.Customer {
	c := customerFromDTO(d)
	c.Orders = mapSlice(d.Orders, func(od dto.OrderDTO) domain.Order {
		o := ownedOrderFromDTO(od)
		o.CustomerID = d.ID
		return o
	})
	return c
}

func CustomersToDTOs(customers []domain.Customer) []dto.CustomerDTO {
	return mapSlice(customers, CustomerToDTO)
}

func CustomersFromDTOs(customers []dto.CustomerDTO) []domain.Customer {
	return mapSlice(customers, CustomerFromDTO)
}

func customerScalarsToDTO(c domain.Customer) dto.CustomerDTO {
	return dto.CustomerDTO{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		PhoneNumber: c.Phone,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt,
		Orders:      []dto.OrderDTO{},
	}
}

func customerFromDTO(d dto.CustomerDTO) domain.Customer {
	return domain.Customer{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.PhoneNumber,
		Active:    d.Active,
		CreatedAt: d.CreatedAt,
		Orders:    []domain.Order{},
	}
}

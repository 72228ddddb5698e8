package mappers

import (
	"github.com/jcmexdev/payment-service/internal/payment-service/core/domain"
	"github.com/jcmexdev/payment-service/internal/payment-service/core/dto"
)

// ProductToDTO maps a product on its own. Its order appears as a stub that
// carries the key and no products.
func ProductToDTO(p domain.Product) dto.ProductDTO {
	out := ownedProductToDTO(p)
	if p.OrderID.Valid {
		out.Order = &dto.OrderDTO{ID: p.OrderID.UUID, Products: []dto.ProductDTO{}}
	}
	return out
}

func ProductFromDTO(d dto.ProductDTO) domain.Product {
	p := ownedProductFromDTO(d)
	if d.Order != nil {
		p.OrderID = nullID(d.Order.ID)
	}
	return p
}

func ProductsToDTOs(products []domain.Product) []dto.ProductDTO {
	return mapSlice(products, ProductToDTO)
}

func ProductsFromDTOs(products []dto.ProductDTO) []domain.Product {
	return mapSlice(products, ProductFromDTO)
}

func ownedProductToDTO(p domain.Product) dto.ProductDTO {
	return dto.ProductDTO{
		ID:                 p.ID,
		Name:               p.Name,
		Price:              p.Price,
		Description:        p.Description,
		StockQuantity:      p.StockQuantity,
		PercentageDiscount: p.PercentageDiscount,
		CreatedAt:          p.CreatedAt,
	}
}

func ownedProductFromDTO(d dto.ProductDTO) domain.Product {
	return domain.Product{
		ID:                 d.ID,
		Name:               d.Name,
		Price:              d.Price,
		Description:        d.Description,
		StockQuantity:      d.StockQuantity,
		PercentageDiscount: d.PercentageDiscount,
		CreatedAt:          d.CreatedAt,
	}
}

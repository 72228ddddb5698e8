package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jcmexdev/payment-service/internal/payment-service/core/domain"
	"github.com/jcmexdev/payment-service/internal/payment-service/core/dto"
	"github.com/jcmexdev/payment-service/internal/payment-service/core/mappers"
	"github.com/jcmexdev/payment-service/internal/payment-service/core/ports"
)

type ProductService struct {
	products ports.ProductRepository
	opts     options
}

func NewProductService(products ports.ProductRepository, opts ...Option) *ProductService {
	return &ProductService{products: products, opts: buildOptions(opts)}
}

// CreateProduct stores a product on its own or, when the payload names an
// order, appended to that existing order.
func (s *ProductService) CreateProduct(ctx context.Context, in dto.ProductDTO) (dto.ProductDTO, error) {
	if err := ValidateProduct(in); err != nil {
		return dto.ProductDTO{}, err
	}
	saved, err := s.products.Save(ctx, mappers.ProductFromDTO(in))
	if err != nil {
		var pe *domain.PersistenceError
		if errors.As(err, &pe) {
			s.opts.metrics.PersistenceFailed(string(pe.Reason))
		}
		slog.ErrorContext(ctx, "failed to persist product", "error", err)
		return dto.ProductDTO{}, err
	}
	slog.InfoContext(ctx, "product created", "product_id", saved.ID.String())
	return mappers.ProductToDTO(saved), nil
}

func (s *ProductService) GetProduct(ctx context.Context, rawID string) (dto.ProductDTO, error) {
	id, err := parseID(rawID)
	if err != nil {
		return dto.ProductDTO{}, err
	}
	p, ok, err := s.products.FindByID(ctx, id)
	if err != nil {
		return dto.ProductDTO{}, err
	}
	if !ok {
		return dto.ProductDTO{}, notFound("product", id)
	}
	return mappers.ProductToDTO(p), nil
}

func (s *ProductService) ListProducts(ctx context.Context, page domain.Page) (dto.PageDTO[dto.ProductDTO], error) {
	products, total, err := s.products.FindPage(ctx, page)
	if err != nil {
		return dto.PageDTO[dto.ProductDTO]{}, err
	}
	return dto.PageDTO[dto.ProductDTO]{
		Items: mappers.ProductsToDTOs(products),
		Page:  page.Number,
		Size:  page.Size,
		Total: total,
	}, nil
}

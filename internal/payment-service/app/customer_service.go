package app

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/jcmexdev/payment-service/internal/payment-service/core/domain"
	"github.com/jcmexdev/payment-service/internal/payment-service/core/dto"
	"github.com/jcmexdev/payment-service/internal/payment-service/core/mappers"
	"github.com/jcmexdev/payment-service/internal/payment-service/core/ports"
)

type CustomerService struct {
	customers ports.CustomerRepository
	opts      options
}

func NewCustomerService(customers ports.CustomerRepository, opts ...Option) *CustomerService {
	return &CustomerService{customers: customers, opts: buildOptions(opts)}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, in dto.CustomerDTO) (dto.CustomerDTO, error) {
	if err := ValidateCustomer(in); err != nil {
		return dto.CustomerDTO{}, err
	}
	saved, err := s.customers.Save(ctx, mappers.CustomerFromDTO(in))
	if err != nil {
		slog.ErrorContext(ctx, "failed to persist customer", "error", err)
		return dto.CustomerDTO{}, err
	}
	slog.InfoContext(ctx, "customer created", "customer_id", saved.ID.String())
	return mappers.CustomerToDTO(saved), nil
}

// GetCustomer reads through the cache when one is configured.
func (s *CustomerService) GetCustomer(ctx context.Context, rawID string) (dto.CustomerDTO, error) {
	id, err := parseID(rawID)
	if err != nil {
		return dto.CustomerDTO{}, err
	}

	var key string
	if s.opts.cache != nil {
		key = customerKey(s.opts.cache, id)
		if cached, ok := s.cached(ctx, key); ok {
			return cached, nil
		}
	}

	c, ok, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return dto.CustomerDTO{}, err
	}
	if !ok {
		return dto.CustomerDTO{}, notFound("customer", id)
	}
	out := mappers.CustomerToDTO(c)

	if key != "" {
		if raw, err := json.Marshal(out); err == nil {
			if err := s.opts.cache.Set(ctx, key, raw, s.opts.ttl); err != nil {
				slog.WarnContext(ctx, "customer cache store failed", "customer_id", id.String(), "error", err)
			}
		}
	}
	return out, nil
}

func (s *CustomerService) ListCustomers(ctx context.Context, page domain.Page) (dto.PageDTO[dto.CustomerDTO], error) {
	customers, total, err := s.customers.FindPage(ctx, page)
	if err != nil {
		return dto.PageDTO[dto.CustomerDTO]{}, err
	}
	return dto.PageDTO[dto.CustomerDTO]{
		Items: mappers.CustomersToDTOs(customers),
		Page:  page.Number,
		Size:  page.Size,
		Total: total,
	}, nil
}

func (s *CustomerService) cached(ctx context.Context, key string) (dto.CustomerDTO, bool) {
	raw, err := s.opts.cache.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "customer cache lookup failed", "key", key, "error", err)
		return dto.CustomerDTO{}, false
	}
	if raw == "" {
		return dto.CustomerDTO{}, false
	}
	var out dto.CustomerDTO
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.opts.forget(ctx, key)
		return dto.CustomerDTO{}, false
	}
	return out, true
}

package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jcmexdev/payment-service/internal/payment-service/billing"
	"github.com/jcmexdev/payment-service/internal/payment-service/core/domain"
	"github.com/jcmexdev/payment-service/internal/payment-service/core/dto"
	"github.com/jcmexdev/payment-service/internal/payment-service/core/mappers"
	"github.com/jcmexdev/payment-service/internal/payment-service/core/ports"
	"github.com/jcmexdev/payment-service/internal/pkg/eventbus"
	"github.com/jcmexdev/payment-service/internal/pkg/interceptors"
)

// OrderService runs the order creation pipeline: validate, translate,
// persist, notify billing, translate back.
type OrderService struct {
	orders ports.OrderRepository
	bus    *eventbus.Dispatcher
	opts   options
}

func NewOrderService(orders ports.OrderRepository, bus *eventbus.Dispatcher, opts ...Option) *OrderService {
	return &OrderService{orders: orders, bus: bus, opts: buildOptions(opts)}
}

// CreateOrder persists the order and its products and publishes
// billing.BillRequested for it. Validation failures never reach the
// repository; repository failures are returned unchanged and publish nothing.
// Listener failures are absorbed by the dispatcher. A request carrying an
// idempotency key returns the order first created under it; a key reused with
// another payload, or held past the wait window, fails with domain.ErrConflict.
func (s *OrderService) CreateOrder(ctx context.Context, in dto.OrderDTO) (dto.OrderDTO, error) {
	ctx, span := s.opts.tracer.Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	if err := ValidateOrder(in); err != nil {
		s.opts.metrics.OrderRejected()
		span.SetStatus(codes.Error, "invalid order")
		slog.WarnContext(ctx, "order rejected", "error", err)
		return dto.OrderDTO{}, err
	}

	idemKey := interceptors.IdempotencyKey(ctx)
	held, prior, err := s.reserve(ctx, idemKey, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "idempotency conflict")
		slog.WarnContext(ctx, "order not replayable", "idempotency_key", idemKey, "error", err)
		return dto.OrderDTO{}, err
	}
	if prior != nil {
		s.opts.metrics.OrderReplayed()
		span.SetAttributes(attribute.Bool("payment.idempotent_replay", true))
		slog.InfoContext(ctx, "order replayed", "order_id", prior.ID.String(), "idempotency_key", idemKey)
		return *prior, nil
	}

	order := mappers.OrderFromDTO(in)
	s.dropCustomer(ctx, order.CustomerID)
	saved, err := s.orders.Save(ctx, order)
	if err != nil {
		s.release(ctx, held)
		var pe *domain.PersistenceError
		if errors.As(err, &pe) {
			s.opts.metrics.PersistenceFailed(string(pe.Reason))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist order")
		slog.ErrorContext(ctx, "failed to persist order", "error", err)
		return dto.OrderDTO{}, err
	}
	span.SetAttributes(
		attribute.String("payment.order_id", saved.ID.String()),
		attribute.String("payment.customer_id", saved.CustomerID.String()),
	)

	s.settle(ctx, held, saved.ID)
	s.dropCustomer(ctx, saved.CustomerID)

	s.bus.Publish(ctx, billing.NewBillRequested(ctx, saved))
	s.opts.metrics.OrderCreated()

	slog.InfoContext(ctx, "order created",
		"order_id", saved.ID.String(),
		"customer_id", saved.CustomerID.String(),
		"products", len(saved.Products),
		"request_id", interceptors.RequestID(ctx),
	)
	return mappers.OrderToDTO(saved), nil
}

func (s *OrderService) GetOrder(ctx context.Context, rawID string) (dto.OrderDTO, error) {
	id, err := parseID(rawID)
	if err != nil {
		return dto.OrderDTO{}, err
	}
	o, ok, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return dto.OrderDTO{}, err
	}
	if !ok {
		return dto.OrderDTO{}, notFound("order", id)
	}
	return mappers.OrderToDTO(o), nil
}

func (s *OrderService) ListOrders(ctx context.Context, page domain.Page) (dto.PageDTO[dto.OrderDTO], error) {
	orders, total, err := s.orders.FindPage(ctx, page)
	if err != nil {
		return dto.PageDTO[dto.OrderDTO]{}, err
	}
	return dto.PageDTO[dto.OrderDTO]{
		Items: mappers.OrdersToDTOs(orders),
		Page:  page.Number,
		Size:  page.Size,
		Total: total,
	}, nil
}

// dropCustomer evicts the cached customer view, whose order list the save
// changes. CreateOrder calls it before the save and again after the commit.
func (s *OrderService) dropCustomer(ctx context.Context, id uuid.UUID) {
	if s.opts.cache == nil {
		return
	}
	s.opts.forget(ctx, customerKey(s.opts.cache, id))
}

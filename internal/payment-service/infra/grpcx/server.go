package grpcx

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/jcmexdev/payment-service/internal/payment-service/core/domain"
	"github.com/jcmexdev/payment-service/internal/payment-service/core/dto"
	"github.com/jcmexdev/payment-service/internal/pkg/interceptors"
)

type OrderService interface {
	CreateOrder(ctx context.Context, in dto.OrderDTO) (dto.OrderDTO, error)
	GetOrder(ctx context.Context, id string) (dto.OrderDTO, error)
}

type CustomerService interface {
	GetCustomer(ctx context.Context, id string) (dto.CustomerDTO, error)
	ListCustomers(ctx context.Context, page domain.Page) (dto.PageDTO[dto.CustomerDTO], error)
}

type paymentServer struct {
	orders    OrderService
	customers CustomerService
}

func NewPaymentServer(orders OrderService, customers CustomerService) PaymentServer {
	return &paymentServer{orders: orders, customers: customers}
}

func (s *paymentServer) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderResponse, error) {
	order, err := s.orders.CreateOrder(ctx, req.Order)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &OrderResponse{Order: order}, nil
}

func (s *paymentServer) GetOrder(ctx context.Context, req *GetRequest) (*OrderResponse, error) {
	order, err := s.orders.GetOrder(ctx, req.ID)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &OrderResponse{Order: order}, nil
}

func (s *paymentServer) GetCustomer(ctx context.Context, req *GetRequest) (*CustomerResponse, error) {
	customer, err := s.customers.GetCustomer(ctx, req.ID)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &CustomerResponse{Customer: customer}, nil
}

func (s *paymentServer) ListCustomers(ctx context.Context, req *ListRequest) (*CustomerPage, error) {
	page, err := s.customers.ListCustomers(ctx, domain.NewPage(req.Page, req.Size))
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &page, nil
}

// NewServer builds the gRPC server with tracing, request metadata and the
// standard health service. The returned health server starts SERVING.
func NewServer(srv PaymentServer) (*grpc.Server, *health.Server) {
	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.UnaryInterceptor(interceptors.TraceServerInterceptor()),
	)
	RegisterPaymentServer(s, srv)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s, hs
}

// toStatus maps core errors onto gRPC codes. Validation failures carry their
// violations as errdetails.BadRequest.
func toStatus(ctx context.Context, err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidUUID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return status.Error(codes.Aborted, err.Error())
	case errors.As(err, &verr):
		br := &errdetails.BadRequest{}
		for _, v := range verr.Violations {
			br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       v.Field,
				Description: v.Reason,
			})
		}
		st := status.New(codes.InvalidArgument, verr.Kind.Error())
		if detailed, derr := st.WithDetails(br); derr == nil {
			st = detailed
		}
		return st.Err()
	default:
		// domain.ErrPersistence and anything unexpected. Storage detail stays
		// in the log.
		slog.ErrorContext(ctx, "rpc failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

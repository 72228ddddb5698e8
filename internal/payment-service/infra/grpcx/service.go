// Package grpcx is the gRPC boundary of the payment service. Messages are the
// transfer shapes of core/dto carried by a JSON codec; the service descriptor
// is declared here instead of being generated.
package grpcx

import (
	"context"

	"google.golang.org/grpc"

	"github.com/jcmexdev/payment-service/internal/payment-service/core/dto"
)

const ServiceName = "payment.v1.Payment"

const (
	CreateOrderMethod   = "/" + ServiceName + "/CreateOrder"
	GetOrderMethod      = "/" + ServiceName + "/GetOrder"
	GetCustomerMethod   = "/" + ServiceName + "/GetCustomer"
	ListCustomersMethod = "/" + ServiceName + "/ListCustomers"
)

type CreateOrderRequest struct {
	Order dto.OrderDTO `json:"order"`
}

type GetRequest struct {
	ID string `json:"id"`
}

type ListRequest struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

type OrderResponse struct {
	Order dto.OrderDTO `json:"order"`
}

type CustomerResponse struct {
	Customer dto.CustomerDTO `json:"customer"`
}

type CustomerPage = dto.PageDTO[dto.CustomerDTO]

type PaymentServer interface {
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderResponse, error)
	GetOrder(ctx context.Context, req *GetRequest) (*OrderResponse, error)
	GetCustomer(ctx context.Context, req *GetRequest) (*CustomerResponse, error)
	ListCustomers(ctx context.Context, req *ListRequest) (*CustomerPage, error)
}

var Payment_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PaymentServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateOrder", Handler: unary(CreateOrderMethod, PaymentServer.CreateOrder)},
		{MethodName: "GetOrder", Handler: unary(GetOrderMethod, PaymentServer.GetOrder)},
		{MethodName: "GetCustomer", Handler: unary(GetCustomerMethod, PaymentServer.GetCustomer)},
		{MethodName: "ListCustomers", Handler: unary(ListCustomersMethod, PaymentServer.ListCustomers)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "payment/v1/payment.proto",
}

func RegisterPaymentServer(s grpc.ServiceRegistrar, srv PaymentServer) {
	s.RegisterService(&Payment_ServiceDesc, srv)
}

// unary adapts a typed method to the descriptor's handler signature, running
// it behind the server interceptor chain like generated code does.
func unary[Req, Resp any](
	fullMethod string,
	call func(PaymentServer, context.Context, *Req) (*Resp, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PaymentServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PaymentServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Client calls the payment service with the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) CreateOrder(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	out := new(OrderResponse)
	return out, c.invoke(ctx, CreateOrderMethod, in, out, opts)
}

func (c *Client) GetOrder(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	out := new(OrderResponse)
	return out, c.invoke(ctx, GetOrderMethod, in, out, opts)
}

func (c *Client) GetCustomer(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*CustomerResponse, error) {
	out := new(CustomerResponse)
	return out, c.invoke(ctx, GetCustomerMethod, in, out, opts)
}

func (c *Client) ListCustomers(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*CustomerPage, error) {
	out := new(CustomerPage)
	return out, c.invoke(ctx, ListCustomersMethod, in, out, opts)
}

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/payment-service/internal/payment-service/infra/httpx/middlewares"
	"github.com/jcmexdev/payment-service/internal/pkg/metrics"
)

// NewRouter wires every route of the service. m may be nil, in which case
// /metrics is not mounted.
func NewRouter(handler *Handler, m *metrics.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachTracingMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.Metrics(m))

	r.Get("/health", handler.Health)
	if m != nil {
		r.Handle("/metrics", m.Handler())
	}

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", handler.ListCustomers)
		r.Post("/", handler.CreateCustomer)
		r.Get("/{id}", handler.GetCustomer)
	})
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", handler.ListOrders)
		r.Post("/", handler.CreateOrder)
		r.Get("/{id}", handler.GetOrderByID)
	})
	r.Route("/products", func(r chi.Router) {
		r.Get("/", handler.ListProducts)
		r.Post("/", handler.CreateProduct)
		r.Get("/{id}", handler.GetProduct)
	})

	// Outermost so the server span also covers the chi middleware chain.
	return otelhttp.NewHandler(r, "payment-service",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health" && r.URL.Path != "/metrics"
		}),
	)
}

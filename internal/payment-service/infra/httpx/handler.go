// Package httpx is the HTTP boundary of the payment service.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jcmexdev/payment-service/internal/payment-service/core/domain"
	"github.com/jcmexdev/payment-service/internal/payment-service/core/dto"
)

type OrderService interface {
	CreateOrder(ctx context.Context, in dto.OrderDTO) (dto.OrderDTO, error)
	GetOrder(ctx context.Context, id string) (dto.OrderDTO, error)
	ListOrders(ctx context.Context, page domain.Page) (dto.PageDTO[dto.OrderDTO], error)
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, in dto.CustomerDTO) (dto.CustomerDTO, error)
	GetCustomer(ctx context.Context, id string) (dto.CustomerDTO, error)
	ListCustomers(ctx context.Context, page domain.Page) (dto.PageDTO[dto.CustomerDTO], error)
}

type ProductService interface {
	CreateProduct(ctx context.Context, in dto.ProductDTO) (dto.ProductDTO, error)
	GetProduct(ctx context.Context, id string) (dto.ProductDTO, error)
	ListProducts(ctx context.Context, page domain.Page) (dto.PageDTO[dto.ProductDTO], error)
}

// Handler translates HTTP requests into service calls and service errors
// into status codes.
type Handler struct {
	orders    OrderService
	customers CustomerService
	products  ProductService
	now       func() time.Time
}

func NewHandler(orders OrderService, customers CustomerService, products ProductService) *Handler {
	return &Handler{
		orders:    orders,
		customers: customers,
		products:  products,
		now:       time.Now,
	}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "UP",
		Message: "Payment Service is healthy at " + h.now().UTC().Format(time.RFC3339),
	})
}

// CreateOrder runs the order pipeline. The X-Idempotency-Key header, when
// present, has already been moved into the context by the middleware.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.OrderDTO
	if !decode(w, r, &req) {
		return
	}
	order, err := h.orders.CreateOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(w, r)
	if !ok {
		return
	}
	out, err := h.orders.ListOrders(r.Context(), page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req dto.CustomerDTO
	if !decode(w, r, &req) {
		return
	}
	customer, err := h.customers.CreateCustomer(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customers.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(w, r)
	if !ok {
		return
	}
	out, err := h.customers.ListCustomers(r.Context(), page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.ProductDTO
	if !decode(w, r, &req) {
		return
	}
	product, err := h.products.CreateProduct(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(w, r)
	if !ok {
		return
	}
	out, err := h.products.ListProducts(r.Context(), page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

const maxBodyBytes = 1 << 20

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "body_too_large",
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	case isUUIDError(err):
		writeError(w, http.StatusBadRequest, "invalid_uuid", err.Error())
	default:
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
	}
	return false
}

// isUUIDError matches the errors of uuid.UUID.UnmarshalText, which
// encoding/json returns unwrapped.
func isUUIDError(err error) bool {
	if uuid.IsInvalidLengthError(err) {
		return true
	}
	msg := err.Error()
	return strings.HasPrefix(msg, "invalid UUID") || strings.HasPrefix(msg, "invalid urn prefix")
}

// parsePage reads ?page and ?size. Missing values take the defaults and
// out-of-range values are clamped; only non-numeric input is rejected.
func parsePage(w http.ResponseWriter, r *http.Request) (domain.Page, bool) {
	number, err := queryInt(r, "page")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_page", err.Error())
		return domain.Page{}, false
	}
	size, err := queryInt(r, "size")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_page", err.Error())
		return domain.Page{}, false
	}
	return domain.NewPage(number, size), true
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return n, nil
}

// writeServiceError is the only place core errors become status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrInvalidUUID):
		writeError(w, http.StatusBadRequest, "invalid_uuid", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "idempotency_conflict", err.Error())
	case errors.As(err, &verr):
		code := "invalid_input"
		if errors.Is(err, domain.ErrInvalidOrder) {
			code = "invalid_order"
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   code,
			Message: verr.Kind.Error(),
			Details: verr.Violations,
		})
	case errors.Is(err, domain.ErrPersistence):
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "persistence_error", "failed to persist data")
	default:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}

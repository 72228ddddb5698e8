package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns the service collectors. A nil *Registry is valid and records
// nothing, so components can take one optionally.
type Registry struct {
	reg *prometheus.Registry

	OrdersCreated       prometheus.Counter
	OrdersRejected      prometheus.Counter
	OrdersReplayed      prometheus.Counter
	PersistenceFailures *prometheus.CounterVec
	ListenerFailures    *prometheus.CounterVec
	HTTPRequests        *prometheus.CounterVec
	HTTPLatencySec      *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	created := prometheus.NewCounter(prometheus.CounterOpts{Name: "payment_orders_created_total"})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{Name: "payment_orders_rejected_total"})
	replayed := prometheus.NewCounter(prometheus.CounterOpts{Name: "payment_orders_idempotent_replays_total"})
	persistence := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "payment_persistence_failures_total"}, []string{"reason"})
	listeners := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "payment_event_listener_failures_total"}, []string{"event"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "payment_http_requests_total"}, []string{"method", "route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_http_request_duration_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	r.MustRegister(created, rejected, replayed, persistence, listeners, requests, latency)
	return &Registry{
		reg:                 r,
		OrdersCreated:       created,
		OrdersRejected:      rejected,
		OrdersReplayed:      replayed,
		PersistenceFailures: persistence,
		ListenerFailures:    listeners,
		HTTPRequests:        requests,
		HTTPLatencySec:      latency,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

func (r *Registry) OrderCreated() {
	if r != nil {
		r.OrdersCreated.Inc()
	}
}

func (r *Registry) OrderRejected() {
	if r != nil {
		r.OrdersRejected.Inc()
	}
}

func (r *Registry) OrderReplayed() {
	if r != nil {
		r.OrdersReplayed.Inc()
	}
}

func (r *Registry) PersistenceFailed(reason string) {
	if r != nil {
		r.PersistenceFailures.WithLabelValues(reason).Inc()
	}
}

// ListenerFailed matches eventbus.FailureHook.
func (r *Registry) ListenerFailed(event string, _ error) {
	if r != nil {
		r.ListenerFailures.WithLabelValues(event).Inc()
	}
}

func (r *Registry) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPLatencySec.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

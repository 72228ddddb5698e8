package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	paymentservice "github.com/jcmexdev/payment-service/internal/payment-service/app"
	"github.com/jcmexdev/payment-service/internal/payment-service/billing"
	"github.com/jcmexdev/payment-service/internal/payment-service/core/ports"
	"github.com/jcmexdev/payment-service/internal/payment-service/infra/adapters/memstore"
	"github.com/jcmexdev/payment-service/internal/payment-service/infra/adapters/sqlstore"
	"github.com/jcmexdev/payment-service/internal/payment-service/infra/grpcx"
	"github.com/jcmexdev/payment-service/internal/payment-service/infra/httpx"
	"github.com/jcmexdev/payment-service/internal/pkg/cache"
	"github.com/jcmexdev/payment-service/internal/pkg/config"
	"github.com/jcmexdev/payment-service/internal/pkg/eventbus"
	"github.com/jcmexdev/payment-service/internal/pkg/metrics"
	"github.com/jcmexdev/payment-service/internal/pkg/telemetry"
)

type repositories struct {
	customers ports.CustomerRepository
	orders    ports.OrderRepository
	products  ports.ProductRepository
	close     func() error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.Telemetry.LogLevel)

	shutdown, err := telemetry.SetupTracer(ctx, telemetry.TracerConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Environment: cfg.Telemetry.Environment,
	})
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	repos, err := openRepositories(cfg.Database)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := repos.close(); err != nil {
			slog.Error("store close error", "error", err)
		}
	}()

	reg := metrics.NewRegistry()
	bus := eventbus.New(eventbus.WithFailureHook(reg.ListenerFailed))
	eventbus.Subscribe(bus, billing.LogBill)

	if brokers := cfg.KafkaBrokers(); len(brokers) > 0 {
		forwarder := billing.NewKafkaForwarder(brokers, cfg.Kafka.BillingTopic)
		defer forwarder.Close()
		eventbus.Subscribe(bus, forwarder.Handle)
		slog.Info("billing forwarder enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.BillingTopic)
	}

	orderOpts := []paymentservice.Option{paymentservice.WithMetrics(reg)}
	customerOpts := []paymentservice.Option{paymentservice.WithMetrics(reg)}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis.Addr, "payment")
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			// Redis is an optimisation; the service runs without it.
			slog.Warn("redis unreachable, continuing", "addr", cfg.Redis.Addr, "error", err)
		}
		orderOpts = append(orderOpts, paymentservice.WithCache(redisCache, cfg.Redis.IdempotencyTTL))
		customerOpts = append(customerOpts, paymentservice.WithCache(redisCache, cfg.Redis.CustomerTTL))
	}

	orderSvc := paymentservice.NewOrderService(repos.orders, bus, orderOpts...)
	customerSvc := paymentservice.NewCustomerService(repos.customers, customerOpts...)
	productSvc := paymentservice.NewProductService(repos.products, paymentservice.WithMetrics(reg))

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpx.NewRouter(httpx.NewHandler(orderSvc, customerSvc, productSvc), reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		slog.Error("failed to listen", "addr", cfg.GRPC.Addr, "error", err)
		os.Exit(1)
	}
	grpcServer, healthServer := grpcx.NewServer(grpcx.NewPaymentServer(orderSvc, customerSvc))

	errCh := make(chan error, 2)
	go func() {
		slog.Info("payment service HTTP running", "addr", cfg.HTTP.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		slog.Info("payment service gRPC running", "addr", cfg.GRPC.Addr)
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errCh:
		slog.Error("server failed", "error", err)
	}

	healthServer.SetServingStatus(grpcx.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
	grpcServer.GracefulStop()
}

func openRepositories(cfg config.DatabaseConfig) (*repositories, error) {
	if cfg.Driver == "memory" {
		store := memstore.New()
		return &repositories{
			customers: store.Customers(),
			orders:    store.Orders(),
			products:  store.Products(),
			close:     func() error { return nil },
		}, nil
	}

	if cfg.Driver == sqlstore.DriverSQLite {
		if dir := filepath.Dir(cfg.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
	}
	store, err := sqlstore.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	return &repositories{
		customers: store.Customers(),
		orders:    store.Orders(),
		products:  store.Products(),
		close:     store.Close,
	}, nil
}

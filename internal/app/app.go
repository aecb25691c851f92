package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/nucoffee/orders/internal/domain"
	healthcheck "github.com/nucoffee/orders/internal/health"
	"github.com/nucoffee/orders/internal/idempotency"
	"github.com/nucoffee/orders/internal/metrics"
	"github.com/nucoffee/orders/internal/notify/telegram"
	"github.com/nucoffee/orders/internal/service/loyalty"
	ordersvc "github.com/nucoffee/orders/internal/service/order"
	"github.com/nucoffee/orders/internal/storage/memory"
	"github.com/nucoffee/orders/internal/storage/postgres"
	transport "github.com/nucoffee/orders/internal/transport/http"
	"github.com/nucoffee/orders/internal/transport/http/middleware"
	"github.com/nucoffee/orders/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Run собирает зависимости и держит процесс до отмены контекста.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	var (
		orderRepo    domain.OrderRepository
		itemRepo     domain.ItemRepository
		customerRepo domain.CustomerRepository
		store        *postgres.Store
	)

	if cfg.Postgres.DSN != "" {
		var err error
		store, err = postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.WithError(err).Warn("failed to close postgres store")
			}
		}()

		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}

		orderRepo = postgres.NewOrderRepository(store)
		itemRepo = postgres.NewItemRepository(store)
		customerRepo = postgres.NewCustomerRepository(store)
		logger.Info("postgres storage initialized")
	} else {
		orderRepo = memory.NewOrderRepository()
		itemRepo = memory.NewItemRepository()
		customerRepo = memory.NewCustomerRepository()
		logger.Warn("postgres dsn is empty, using in-memory storage")
	}

	orderMetrics := metrics.NewOrderMetrics()

	dispatcher := telegram.NewDispatcher(telegram.Config{
		Endpoint:    cfg.Telegram.Endpoint,
		ChatIDs:     cfg.Telegram.ChatIDs,
		SendTimeout: cfg.Telegram.SendTimeout,
	}, orderMetrics, logger.WithField("layer", "notify"))
	if dispatcher.Recipients() == 0 {
		logger.Warn("no notification recipients configured, dispatch disabled")
	}

	ledger := loyalty.NewLedger(customerRepo, logger.WithField("layer", "loyalty"))
	orderService := ordersvc.NewService(
		orderRepo, itemRepo, ledger, dispatcher, orderMetrics,
		logger.WithField("layer", "orders"),
	)

	var idemStore domain.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
		defer func() { _ = rdb.Close() }()
		idemStore = idempotency.NewRedisStore(rdb, cfg.Idempotency.TTL)
		logger.WithField("addr", cfg.Redis.Addr).Info("redis idempotency store initialized")
	} else {
		idemStore = idempotency.NewMemoryStore(cfg.Idempotency.TTL)
	}

	authz := middleware.NewAuthz(middleware.AuthzConfig{
		Secret:   cfg.Security.JWTSecret,
		Issuer:   cfg.Security.Issuer,
		Audience: cfg.Security.Audience,
	})

	orderHandler := transport.NewOrderHandler(orderService, idemStore, logger.WithField("layer", "http"))
	customerHandler := transport.NewCustomerHandler(ledger, customerRepo, logger.WithField("layer", "http"))
	router := transport.NewRouter(orderHandler, customerHandler, authz, logger.WithField("layer", "http"))

	// HTTP health checks
	healthHandler := healthcheck.NewHandler(version.String())
	if store != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return store.Ping(pingCtx)
		}))
	}

	metricsSrv := startMetricsServer(ctx, cfg.App.MetricsAddr, logger, healthHandler)

	apiSrv := &http.Server{Addr: cfg.App.HTTPAddr, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.App.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает служебный HTTP-сервер с /metrics и health-чеками.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez", addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}

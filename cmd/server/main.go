package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ordermesh/cmd/server/config"
	"ordermesh/internal/audit"
	"ordermesh/internal/bus"
	"ordermesh/internal/clients"
	ordersdb "ordermesh/internal/db/orders"
	"ordermesh/internal/httpapi"
	"ordermesh/internal/observability"
	"ordermesh/internal/orders"
	"ordermesh/internal/orders/journal"
	"ordermesh/internal/realtime"
	"ordermesh/internal/reliability"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const serviceName = "order-service"

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	busCfg, err := config.LoadBus()
	if err != nil {
		return err
	}
	httpCfg, err := config.LoadHTTP()
	if err != nil {
		return err
	}
	relCfg, err := config.LoadReliability()
	if err != nil {
		return err
	}

	busClient, err := buildBusClient(ctx, busCfg)
	if err != nil {
		return err
	}
	defer busClient.Close()

	rpc := bus.NewRedisRPC(busClient, busCfg.CallTimeout)

	cart, inventory := buildClients(rpc, busCfg, relCfg)
	auditLog := audit.NewLogger(rpc, busCfg.AuditTopic, serviceName, logger)

	storeLogf := func(format string, args ...any) {
		logger.Info(fmt.Sprintf(format, args...), "component", "store")
	}
	store, rec, cleanup := orders.BuildPersistence(ctx, config.LoadStore().DSN, initSchema, storeLogf)
	defer cleanup()

	hub := realtime.NewHub(logger)
	go hub.Run()

	metrics := observability.NewMetrics()
	policy := orders.NewRandomPolicy(time.Now().UnixNano())
	service := orders.NewService(store, cart, inventory, policy, auditLog, rec, hub)

	var ingressLimit func(http.Handler) http.Handler
	if httpCfg.RateLimitInterval > 0 && httpCfg.RateLimitBurst > 0 {
		limiter := reliability.NewRateLimiterWithHook(httpCfg.RateLimitInterval, httpCfg.RateLimitBurst, metrics.AddRateLimitWait)
		ingressLimit = httpapi.RateLimit(limiter)
	}

	handler := httpapi.NewHandler(service, metrics, logger)
	router := httpapi.NewRouter(handler, httpapi.Extras{
		RateLimit: ingressLimit,
		Metrics:   observability.Handler(metrics),
		WS:        hub.ServeWS,
	})

	server := &http.Server{
		Addr:    httpCfg.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", httpCfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		metrics.MarkShutdown(metrics.Snapshot().InFlight)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func buildClients(rpc *bus.RedisRPC, busCfg config.BusConfig, relCfg config.ReliabilityConfig) (orders.CartClient, orders.InventoryClient) {
	var cart orders.CartClient = clients.NewCartClient(rpc, busCfg.CartFetchTopic, busCfg.CartCommandTopic)
	var inventory orders.InventoryClient = clients.NewInventoryClient(rpc, busCfg.InventoryTopic)

	retry := reliability.RetryPolicy{
		MaxAttempts: relCfg.RetryAttempts,
		BaseDelay:   relCfg.RetryBaseDelay,
		MaxDelay:    relCfg.RetryMaxDelay,
	}

	var limiter *reliability.RateLimiter
	if relCfg.RateLimitInterval > 0 && relCfg.RateLimitBurst > 0 {
		limiter = reliability.NewRateLimiter(relCfg.RateLimitInterval, relCfg.RateLimitBurst)
	}

	var cartBreaker, inventoryBreaker *reliability.CircuitBreaker
	if relCfg.BreakerFailures > 0 {
		cartBreaker = reliability.NewCircuitBreaker(reliability.CircuitBreakerConfig{
			MaxFailures:  relCfg.BreakerFailures,
			ResetTimeout: relCfg.BreakerReset,
		})
		inventoryBreaker = reliability.NewCircuitBreaker(reliability.CircuitBreakerConfig{
			MaxFailures:  relCfg.BreakerFailures,
			ResetTimeout: relCfg.BreakerReset,
		})
	}

	cart = clients.NewReliableCartClient(cart, limiter, cartBreaker, retry)
	inventory = clients.NewReliableInventoryClient(inventory, limiter, inventoryBreaker, retry)

	return cart, inventory
}

func initSchema(ctx context.Context, db *sql.DB) (orders.Store, journal.Recorder, error) {
	store, err := ordersdb.NewOrderStoreWithSchema(ctx, db)
	if err != nil {
		return nil, nil, err
	}
	rec, err := ordersdb.NewJournalStoreWithSchema(ctx, db)
	if err != nil {
		return nil, nil, err
	}
	return store, rec, nil
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/nebulashop-backend/api/controllers"
	"github.com/angelmondragon/nebulashop-backend/api/routes"
	"github.com/angelmondragon/nebulashop-backend/internal/catalog"
	"github.com/angelmondragon/nebulashop-backend/internal/checkout"
	"github.com/angelmondragon/nebulashop-backend/internal/events"
	"github.com/angelmondragon/nebulashop-backend/internal/payments"
	"github.com/angelmondragon/nebulashop-backend/pkg/config"
	"github.com/angelmondragon/nebulashop-backend/pkg/instance"
	"github.com/angelmondragon/nebulashop-backend/pkg/kafka"
	"github.com/angelmondragon/nebulashop-backend/pkg/logger"
	"github.com/angelmondragon/nebulashop-backend/pkg/metrics"
	"github.com/angelmondragon/nebulashop-backend/pkg/redis"
)

const (
	serviceName     = "nebulashop-api"
	shutdownTimeout = 15 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped with errors", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snap, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"products": len(snap.Products()),
		"rewards":  len(snap.Rewards()),
	}), "catalog loaded")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	checkoutMetrics := metrics.NewCheckoutMetrics(reg)

	var (
		store       payments.Store = payments.NewMemoryStore()
		redisPinger controllers.Pinger
	)
	if cfg.Redis.Enabled() {
		redisClient, dialErr := redis.New(ctx, cfg.Redis, logg)
		if dialErr != nil {
			return dialErr
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		redisStore, storeErr := payments.NewRedisStore(redisClient, cfg.Redis.SessionTTL)
		if storeErr != nil {
			return storeErr
		}
		store = redisStore
		redisPinger = redisClient
	} else {
		logg.Warn(ctx, "redis not configured, payment sessions are kept in memory")
	}

	manager, err := payments.NewManager(payments.ManagerOptions{
		Store:      store,
		Delays:     payments.DelaysFromConfig(cfg.Payments),
		SessionTTL: cfg.Checkout.SessionTTL,
		Logger:     logg,
		Metrics:    checkoutMetrics,
	})
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, manager.Close())
	}()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka, logg)
		defer func() {
			err = multierr.Append(err, producer.Close())
		}()
		publisher = events.NewKafkaPublisher(producer, serviceName+"/"+instance.GetID())
	} else {
		logg.Warn(ctx, "kafka not configured, order events are dropped")
	}

	registry, err := checkout.NewRegistry(cfg.Checkout.StartingCoins, checkout.Dependencies{
		Catalog:      snap,
		Sessions:     manager,
		Waiter:       payments.NewPollingWaiter(manager, cfg.Checkout.PollInterval),
		Publisher:    publisher,
		Metrics:      checkoutMetrics,
		Logger:       logg,
		AwaitTimeout: cfg.Checkout.AwaitTimeout,
	})
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, redisPinger, snap, registry, manager, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	// Background checkouts still publish and poll sessions; let them settle
	// before the deferred manager and producer closes run.
	return registry.Drain(shutdownCtx)
}

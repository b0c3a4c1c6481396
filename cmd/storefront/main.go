package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/gateway"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/internal/redisx"
	"storefront/internal/repos"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, err := applog.New(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	applog.SetLogger(logger)
	defer func() { _ = applog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repos.OpenDB(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()
	if cfg.SeedDemo {
		if err := repos.Seed(ctx, db); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var pub events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		pub = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		applog.Info(nil, "events.kafka", map[string]any{"brokers": cfg.KafkaBrokers, "topic": cfg.KafkaTopic})
	}
	defer pub.Close()

	var limiterStorage fiber.Storage
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return fmt.Errorf("redis: %w", err)
		}
		store := redisx.NewStorage(rdb, "storefront:limiter:")
		defer store.Close()
		limiterStorage = store
	}

	gw := gateway.New(cfg.Gateway, nil)
	deps := handlers.NewDeps(db, cfg, gw, pub, m)
	app := handlers.NewApp(deps, handlers.Options{
		CORSOrigins:    cfg.CORSOrigins,
		RateLimitMax:   cfg.RateLimitMax,
		LimiterStorage: limiterStorage,
		Metrics:        m,
		Gatherer:       reg,
	})

	errc := make(chan error, 1)
	go func() {
		applog.Info(nil, "server.start", map[string]any{
			"port": cfg.Port, "driver": cfg.DBDriver, "stock_policy": cfg.StockPolicy, "gateway": cfg.Gateway.BaseURL,
		})
		errc <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	applog.L().Info("server.shutdown", zap.String("reason", context.Cause(ctx).Error()))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

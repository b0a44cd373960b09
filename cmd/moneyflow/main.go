package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"moneyflow/internal/amqp"
	"moneyflow/internal/cache"
	"moneyflow/internal/chart"
	"moneyflow/internal/cli"
	apphttp "moneyflow/internal/http"
	applog "moneyflow/internal/log"
	"moneyflow/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	logger.Info("Starting moneyflow",
		"port", cfg.Port,
		"session_ttl", cfg.SessionTTL,
		"max_sessions", cfg.MaxSessions,
		"publishing", cfg.PublishingEnabled())

	// Accepted transactions go to the journal worker through AMQP when configured
	var (
		publisher  services.Publisher
		amqpClient *amqp.Client
	)
	if cfg.PublishingEnabled() {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		publisher = amqpClient
		logger.Info("AMQP publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP publishing disabled - no AMQP_URL provided")
	}

	charts := cache.NewLRUCache[chart.ChartSeries](cfg.ChartCacheSize, cfg.SessionTTL)
	cacheManager := cache.NewManager(logger)
	cacheManager.Register(charts)
	cacheManager.StartCleanup(5 * time.Minute)

	ledgers := services.NewLedgerService(services.Options{
		TTL:         cfg.SessionTTL,
		MaxSessions: cfg.MaxSessions,
		Publisher:   publisher,
		ChartCache:  charts,
		Logger:      logger,
	})
	ledgers.StartJanitor(time.Minute)

	srv := apphttp.NewServer(apphttp.ServerConfig{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		ChartStats:         charts.Stats,
		Logger:             logger,
		Ready: func(ctx context.Context) error {
			if amqpClient != nil && amqpClient.State() == amqp.StateOpen {
				return amqp.ErrCircuitOpen
			}
			return nil
		},
	}, ledgers)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		_ = ledgers.Close()
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("Failed to close AMQP client", "error", err)
			}
		}
		logger.Info("Sessions discarded", "count", ledgers.Count())
	})

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

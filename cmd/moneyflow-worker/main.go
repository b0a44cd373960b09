package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"moneyflow/internal/amqp"
	"moneyflow/internal/backend"
	"moneyflow/internal/cli"
	applog "moneyflow/internal/log"
	"moneyflow/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)

	logger.Info("Starting moneyflow-worker", "journal_backend", cfg.JournalBackend)

	if !cfg.PublishingEnabled() {
		logger.Error("AMQP_URL is required for the journal worker")
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	sinks, err := backend.NewFactory(logger).CreateSinks(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize journal sinks", "error", err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		_ = sinks.Cleanup()
		os.Exit(1)
	}

	journalWorker := worker.NewJournalWorker(sinks.Sinks, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if err := amqpClient.Close(); err != nil {
			logger.Error("Failed to close AMQP client", "error", err)
		}
		if err := sinks.Cleanup(); err != nil {
			logger.Error("Failed to close journal sinks", "error", err)
		}
		stats := journalWorker.Stats()
		logger.Info("Worker totals",
			"processed", stats.Processed,
			"failed", stats.Failed,
			"dropped", stats.Dropped)
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeTransactionRecorded(gctx, journalWorker.HandleTransactionRecorded)
	})
	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				stats := journalWorker.Stats()
				logger.Info("Journal worker stats",
					"processed", stats.Processed,
					"failed", stats.Failed,
					"dropped", stats.Dropped,
					"circuit_state", amqpClient.State())
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}

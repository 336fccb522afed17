package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"kassza/internal/amqp"
	"kassza/internal/cli"
	"kassza/internal/log"
	"kassza/internal/sheets"
	gsheet "kassza/internal/sheets/google"
	mem "kassza/internal/sheets/memory"
	"kassza/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting kassza-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo := cli.InitStorage(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Mirror target: Google Sheets when configured, otherwise an in-memory
	// sink so the worker still drains the queue in local runs.
	var writer sheets.LedgerWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		writer = mem.New()
		logger.Info("Google Sheets disabled - mirroring to memory sink")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mirrorWorker := worker.NewMirrorWorker(repo, writer, cfg.SyncBatchSize)

	// Drain any backlog left over from downtime before consuming.
	if err := mirrorWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup mirror check failed", log.FieldError, err)
		// Don't exit - continue with normal operation
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.Consume(gctx, func(msg *amqp.MirrorMessage) error {
			return mirrorWorker.HandleMessage(gctx, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := mirrorWorker.ProcessPending(gctx); err != nil {
					logger.Error("Periodic mirror pass failed", log.FieldError, err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete")
}

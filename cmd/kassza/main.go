package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"kassza/internal/amqp"
	"kassza/internal/cli"
	apphttp "kassza/internal/http"
	"kassza/internal/log"
	"kassza/internal/rates"
	"kassza/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitStorage(logger, cfg.SQLiteDBPath)

	// AMQP is optional; without it writes stay local and the worker's
	// catch-up pass never runs.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		logger.Info("AMQP client initialized", log.FieldQueue, cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	ledger := services.NewLedgerService(repo, amqpClient)
	reports := services.NewReportService(repo, logger)

	var ratesClient *rates.Client
	if cfg.RatesAPIURL != "" {
		ratesClient = rates.NewClient(cfg.RatesAPIURL, cfg.RatesTimeout, logger)
	}

	srv := apphttp.NewServer(":"+cfg.Port, ledger, reports, ratesClient, logger, cfg.RecentLimit)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := ledger.Close(); err != nil {
			logger.Error("Service close error", log.FieldError, err)
		}
	})

	logger.Info("Starting kassza server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

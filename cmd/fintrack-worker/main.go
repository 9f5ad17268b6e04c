package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	bootstrap "fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/worker"
)

func main() {
	bootstrap.LoadEnvFile()

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		bootstrap.SetupLogger(nil, os.Stderr).Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	logger := bootstrap.SetupLogger(cfg, os.Stdout).WithComponent(log.ComponentWorker)

	if err := run(logger, cfg); err != nil {
		logger.Error("Worker stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped")
}

func run(logger *log.Logger, cfg *config.Config) error {
	if !cfg.EventsEnabled() {
		return errors.New("AMQP_URL is required for the worker")
	}
	if !cfg.SheetsEnabled() {
		return errors.New("GOOGLE_SPREADSHEET_ID is required for the worker")
	}
	// An in-process store is empty here, so every message would be dropped.
	if cfg.DataBackend != config.BackendSQLite {
		return fmt.Errorf("DATA_BACKEND must be %s for the worker, got %q", config.BackendSQLite, cfg.DataBackend)
	}

	ctx, cancel := bootstrap.SignalContext(log.WithLogger(context.Background(), logger), logger)
	defer cancel()

	logger.InfoContext(ctx, "Starting fintrack-worker", log.FieldOperation, log.OpStartup)

	// The worker only reads the store; it publishes nothing.
	storeCfg := *cfg
	storeCfg.AMQPURL = ""
	res, err := bootstrap.InitBackend(ctx, logger, &storeCfg)
	if err != nil {
		return err
	}
	defer res.Cleanup()

	sheetsClient, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return err
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(res.Store, sheetsClient)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := amqpClient.Consume(gctx, cfg.AMQPPrefetch, syncWorker.Handlers())
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", log.FieldOperation, log.OpShutdown)
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		select {
		case err := <-done:
			return err
		case <-time.After(cfg.ShutdownTimeout):
			logger.Warn("Shutdown timeout reached")
			return nil
		}
	}
}

package main

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"recipehub/internal/amqp"
	"recipehub/internal/cli"
	"recipehub/internal/log"
	"recipehub/internal/services"
	gsheet "recipehub/internal/sheets/google"
	"recipehub/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err == nil {
		err = cfg.ValidateSheets()
	}
	if err != nil {
		cli.Fatal(cli.SetupLogger("info", log.ComponentWorker), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentWorker)
	logger.Info("Starting recipehub-worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	sheet, err := gsheet.NewFromEnv(ctx)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	syncWorker := worker.NewSyncWorker(repo, sheet, cfg.SyncBatchSize)

	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", log.FieldError, err, log.FieldOperation, log.OpStartup)
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize AMQP client", err)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			err := amqpClient.ConsumeMessages(gctx, syncWorker.HandleMessage)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("AMQP disabled, relying on the periodic sweep")
	}

	processor := services.NewSyncProcessor(syncWorker, services.SyncProcessorConfig{PollInterval: cfg.SyncInterval})
	if err := processor.Start(gctx); err != nil {
		cli.Fatal(logger, "Failed to start sync processor", err)
	}
	g.Go(func() error {
		<-gctx.Done()
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()
		return processor.Stop(stopCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err, log.FieldOperation, log.OpShutdown)
		cancel()
		return
	}
	logger.Info("Worker shutdown complete")
}

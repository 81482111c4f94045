package main

import (
	"context"
	"errors"
	"os"
	"time"

	"bankdash/internal/amqp"
	"bankdash/internal/cli"
	"bankdash/internal/log"
	"bankdash/internal/upload"
	"bankdash/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting bankdash-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	amqpClient, err := amqp.NewClient(context.Background(), cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	// Consumption stops when ctx is cancelled; the client is closed after.
	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, nil)

	validator := upload.NewValidator(cfg.UploadExtensions, cfg.UploadCaseInsensitive)
	uploadWorker := worker.NewUploadWorker(repo, validator, logger)

	if err := uploadWorker.Run(ctx, amqpClient, cfg.WorkerPrefetch); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		_ = amqpClient.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	if err := amqpClient.Close(); err != nil {
		logger.Error("Failed to close AMQP client", log.FieldError, err)
	}
	logger.Info("Worker stopped")
}

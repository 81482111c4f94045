package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"bankdash/internal/amqp"
	"bankdash/internal/backend"
	"bankdash/internal/cli"
	"bankdash/internal/dashboard"
	apphttp "bankdash/internal/http"
	"bankdash/internal/log"
	"bankdash/internal/theme"
	"bankdash/internal/upload"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).Create(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, log.FieldSource, cfg.DataSource)
		os.Exit(1)
	}

	themes, err := theme.NewFlag(ctx, res.Themes)
	if err != nil {
		logger.Error("Failed to load theme preference", log.FieldError, err, "theme_store", cfg.ThemeStore)
		_ = res.Close()
		os.Exit(1)
	}

	loader := dashboard.NewLoader(res.Supplier, dashboard.NewStore(), cfg.AggregateOptions(), logger)

	opts := []upload.Option{
		upload.WithDelay(cfg.UploadDelay),
		upload.WithLogger(logger),
	}
	if res.Recorder != nil {
		opts = append(opts, upload.WithRecorder(res.Recorder))
	}

	// Uploads are announced on the broker only when one is configured
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		opts = append(opts, upload.WithNotifier(amqpClient))
		logger.Info("Upload notifications enabled", "exchange", cfg.AMQPExchange)
	}

	uploads := upload.NewService(upload.NewValidator(cfg.UploadExtensions, cfg.UploadCaseInsensitive), opts...)

	srv := apphttp.NewServer(apphttp.OptionsFromConfig(cfg), loader, themes, uploads, logger)

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("Failed to close AMQP client", log.FieldError, err)
			}
		}
		if err := res.Close(); err != nil {
			logger.Error("Failed to close backend", log.FieldError, err)
		}
	})

	// First load runs in the background so the page shows its loading state.
	go func() {
		if _, err := loader.Load(shutdownCtx); err != nil {
			logger.Warn("Initial dashboard load failed", log.FieldError, err)
		}
	}()

	logger.Info("Starting bankdash server", "addr", srv.Addr, log.FieldSource, cfg.DataSource)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "addr", srv.Addr)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}

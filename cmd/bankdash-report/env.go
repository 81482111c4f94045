package main

import (
	"context"
	"fmt"

	"bankdash/internal/backend"
	"bankdash/internal/cli"
	"bankdash/internal/config"
	"bankdash/internal/dashboard"
	"bankdash/internal/log"
)

// env is an opened backend plus the settings it was built from.
type env struct {
	cfg     *config.Config
	backend *backend.Result
	logger  *log.Logger
}

// loadConfig reads and validates the environment without opening anything.
func loadConfig(g *Globals) (*config.Config, *log.Logger, error) {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(g.LogLevel)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func openEnv(ctx context.Context, g *Globals) (*env, error) {
	cfg, logger, err := loadConfig(g)
	if err != nil {
		return nil, err
	}
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).Create(ctx, bcfg)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, backend: res, logger: logger}, nil
}

func (e *env) Close() error { return e.backend.Close() }

// load fetches and aggregates the statement once.
func (e *env) load(ctx context.Context) (*dashboard.Snapshot, error) {
	loader := dashboard.NewLoader(e.backend.Supplier, dashboard.NewStore(), e.cfg.AggregateOptions(), e.logger)
	snap, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dashboard.UserMessage(err), err)
	}
	return snap, nil
}

// withSnapshot opens the backend, loads it and hands the result to fn.
func withSnapshot(g *Globals, fn func(ctx context.Context, e *env, snap *dashboard.Snapshot) error) error {
	ctx := context.Background()
	e, err := openEnv(ctx, g)
	if err != nil {
		return err
	}
	defer e.Close()

	snap, err := e.load(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, e, snap)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/olerom/formula/internal/app"
	"github.com/olerom/formula/internal/config"
	"github.com/olerom/formula/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "formula harvester: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	log.InfoObj("harvester starting", "config", map[string]any{
		"env":             cfg.Env,
		"ergast_base_url": cfg.ErgastBaseURL,
		"series":          cfg.ErgastSeries,
		"queries_file":    cfg.QueriesFile,
		"publishers_file": cfg.PublishersFile,
		"storage_type":    cfg.StorageType,
		"run_once":        cfg.RunOnce,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	harvester, err := app.NewHarvester(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("harvester init failed", "error", err.Error())
		return err
	}

	if err := harvester.Run(ctx); err != nil {
		return fmt.Errorf("harvester run: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/xplana-partner-client/internal/app"
	"github.com/samvad-hq/xplana-partner-client/internal/config"
	"github.com/samvad-hq/xplana-partner-client/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "catalog-sync start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sugar, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("catalog-sync starting", "config", map[string]any{
		"app_name":        cfg.AppName,
		"env":             cfg.Env,
		"xplana_host":     cfg.XplanaHost,
		"api_version":     cfg.XplanaAPIVersion,
		"sync_interval":   cfg.SyncInterval.String(),
		"storage_type":    cfg.StorageType,
		"publishers_file": cfg.PublishersFile,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	syncer, err := app.NewSyncer(ctx, cfg, logger.New(sugar))
	if err != nil {
		logger.ErrorObj("failed to initialize syncer", "error", err)
		return err
	}

	if err := syncer.Run(ctx); err != nil {
		return fmt.Errorf("syncer run: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"salesreport/internal/api"
	"salesreport/internal/config"
	"salesreport/internal/engine"
	"salesreport/internal/logging"
	"salesreport/internal/models"

	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Configuration and logging
	cfgPath := os.Getenv("SALES_CONFIG")
	if cfgPath == "" {
		cfgPath = config.DefaultPath
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	cutoff, err := cfg.CutoffDate()
	if err != nil {
		return err
	}

	// 2. Handler: every request reruns load -> clean -> aggregate, so a fixed
	// CSV on disk is picked up without restarting.
	h := api.NewHandler(engine.Options{
		Path:        cfg.DataPath,
		Cutoff:      cutoff,
		PreviewRows: cfg.PreviewRows,
	}, logging.WithComponent(logger, logging.ComponentEngine))

	e := api.NewServer(h, logger, api.ServerOptions{RateLimit: cfg.Server.RateLimit})

	// 3. Serve until SIGINT/SIGTERM, then drain
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server ready",
			"port", cfg.Server.Port,
			logging.FieldSource, cfg.DataPath,
			logging.FieldCutoff, cutoff.Format(models.DateLayout))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

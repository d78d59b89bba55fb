package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/launchdash/launchdash/server/internal/config"
	"github.com/launchdash/launchdash/server/internal/metrics"
	"github.com/launchdash/launchdash/server/internal/ws"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API, WebSocket sessions and metrics",
		Long: `Loads the dataset once, then serves:

  /api/v1/*     REST chart queries
  /ws/session   per-client WebSocket filter sessions
  /metrics      Prometheus metrics
  /             the UI from server.ui_dir, when set

A dataset that cannot be loaded is fatal; nothing is served.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	opts.setupLogging(os.Stdout)

	cfg, err := opts.loadConfig()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		return err
	}
	slog.Info("launchdash starting",
		"config", opts.configPath,
		"http_port", cfg.Server.HTTPPort,
		"dataset", cfg.Server.Dataset.Path,
		"log_level", cfg.Server.LogLevel,
	)

	ds, err := loadDataset(cfg)
	if err != nil {
		slog.Error("failed to load dataset", "path", cfg.Server.Dataset.Path, "err", err)
		return err
	}

	rec := metrics.New()
	rec.SetDatasetSize(ds.Len())

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	hub := ws.New(ds, rec, ws.Options{
		PingPeriod: cfg.Server.WS.PingPeriod,
		PongWait:   cfg.Server.WS.PongWait,
	})

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           newMux(cfg, ds, rec, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("launchdash shutting down")
		sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer scancel()
		return httpSrv.Shutdown(sctx)
	})

	if opts.configPath != "" {
		g.Go(func() error {
			err := config.Watch(gctx, opts.configPath, func(c *config.Config) {
				opts.level.Set(c.Server.SlogLevel())
			})
			if err != nil {
				// Serving continues without hot reload.
				slog.Warn("config: watch disabled", "path", opts.configPath, "err", err)
			}
			return nil
		})
	}

	return g.Wait()
}

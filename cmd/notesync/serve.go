package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/notesync/internal/scheduler"
	"github.com/fyrsmithlabs/notesync/internal/server"
	"github.com/fyrsmithlabs/notesync/internal/telemetry"
)

// shutdownTimeout bounds graceful HTTP shutdown after a signal.
const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the notesync daemon",
	Long: `Start notesync in daemon mode: the HTTP surface (health, metrics,
status and trigger endpoints) plus the scheduled refresh loop configured
by refresh.interval and refresh.on_startup.

The daemon shuts down gracefully on SIGINT or SIGTERM. An in-flight
synchronization run is never interrupted by shutdown.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("starting notesync daemon",
		zap.String("version", version),
		zap.String("host", a.cfg.Server.Host),
		zap.Int("port", a.cfg.Server.Port),
		zap.String("refresh_interval", a.cfg.Refresh.Interval),
		zap.Bool("refresh_on_startup", a.cfg.Refresh.OnStartup))

	tel, err := telemetry.New(ctx, a.cfg.Telemetry, version)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			a.logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	interval, err := a.cfg.Refresh.IntervalMinutes()
	if err != nil {
		return err
	}
	sched, err := scheduler.New(a.sync, interval, a.cfg.Refresh.OnStartup, a.logger.Named("scheduler"))
	if err != nil {
		return err
	}
	sched.Start(ctx)

	srv, err := server.NewServer(a.sync, a.decorator, a.logger.Named("server"), &server.Config{
		Host: a.cfg.Server.Host,
		Port: a.cfg.Server.Port,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		a.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		sched.Stop()
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	// Stop the refresh loop first; a run already in flight finishes on
	// its own because triggers detach from the daemon context.
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown failed: %w", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openastro/papersync/internal/api"
)

// newServeCmd creates the 'serve' subcommand: an HTTP server plus a ticker
// that runs the sync on a schedule until the process is signalled.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Runs the sync on a schedule and serves the HTTP API",
		Long: `Starts an HTTP server exposing health, metrics, the latest run report,
and a manual trigger endpoint, while executing a sync run every
configured interval. Shuts down gracefully on SIGINT or SIGTERM.`,

		RunE: runServeCommand,
	}
	return cmd
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg := appInstance.Config()
	logger := appInstance.Logger()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewServer(appInstance, cfg, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	go scheduleRuns(ctx, appInstance, cfg.SyncInterval(), logger)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// scheduleRuns executes one run immediately and then one per interval until
// the context finishes. Abort errors are logged, not fatal; the next tick
// gets a fresh attempt.
func scheduleRuns(ctx context.Context, appInstance App, interval time.Duration, logger *zap.Logger) {
	runOnce := func() {
		report, err := appInstance.RunOnce(ctx)
		if err != nil {
			logger.Error("scheduled sync aborted",
				zap.String("run_id", report.RunID),
				zap.Error(err),
			)
			return
		}
		logger.Info("scheduled sync completed",
			zap.String("run_id", report.RunID),
			zap.Int("inserted", report.Inserted),
			zap.Int("archived", report.Archived),
		)
	}

	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

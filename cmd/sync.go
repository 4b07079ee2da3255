package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newSyncCmd creates the 'sync' subcommand, which executes exactly one run
// and exits. The process exits non-zero when the run aborts.
func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Runs one fetch-reconcile-trim cycle and exits",
		Long: `Fetches recent papers for the configured categories, inserts the new
ones into the record store, trims the store down to the retention cap,
and exits. Interrupts take effect between steps, never mid-insert.`,

		RunE: runSyncCommand,
	}
	return cmd
}

func runSyncCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.Logger()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, runErr := appInstance.RunOnce(ctx)
	if runErr != nil {
		return fmt.Errorf("sync: %w", runErr)
	}

	logger.Info("sync completed",
		zap.String("run_id", report.RunID),
		zap.Int("fetched", report.Fetched),
		zap.Int("inserted", report.Inserted),
		zap.Int("archived", report.Archived),
		zap.Strings("warnings", report.Warnings),
	)
	for _, pick := range report.TopPicks {
		logger.Info("top pick",
			zap.String("title", pick.Title),
			zap.Int("score", pick.Score),
			zap.String("url", pick.SourceURL),
		)
	}
	return nil
}

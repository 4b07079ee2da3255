// Package cmd defines and implements the CLI commands for the papersync
// executable.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openastro/papersync/internal/app"
	"github.com/openastro/papersync/internal/config"
	"github.com/openastro/papersync/internal/logging"
	"github.com/openastro/papersync/internal/sync"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application surface that commands use. It is an
// interface so tests can inject a fake.
type App interface {
	Close()
	Logger() *zap.Logger
	Config() config.Config
	RunOnce(ctx context.Context) (sync.Report, error)
	LatestReport() (sync.Report, bool)
}

// newApp is the application factory. It is a variable so tests can replace
// it with a fake factory.
var newApp = func(ctx context.Context) (App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, logger)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "papersync",
		Short: "Syncs recent arXiv papers into a record store.",
		Long: `papersync fetches recently submitted arXiv papers for the configured
categories, scores them against keyword tiers, inserts the new ones into
the destination record store, and archives the oldest records beyond the
retention cap.`,

		// Runs after flags are parsed and before the subcommand's RunE;
		// this is where the application container is built and injected.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}
			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is environment only)")

	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point.
func Execute() error {
	return newRootCmd().Execute()
}

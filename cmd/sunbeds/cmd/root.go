package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/sunbed-manager/internal/config"
	"github.com/oshokin/sunbed-manager/internal/logger"
	"github.com/oshokin/sunbed-manager/internal/service/manager"
	"github.com/oshokin/sunbed-manager/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// dataFile overrides the data file from settings.
	dataFile string
	// logLevel overrides the log level from settings.
	logLevel string

	// rootCmd represents the base command for managing sun beds.
	rootCmd = &cobra.Command{
		Use:   "sunbeds",
		Short: "Track which sun beds are booked and which are free.",
		Long: `Keeps a numbered collection of sun beds, each either free or booked.

Every change is written to the data file immediately, so the state survives restarts.
If the data file is missing or unreadable at startup, an empty one is created.
Beds are addressed by the number shown in "sunbeds status" (starting at 1).`,
		SilenceUsage: true,
	}
)

// Execute runs the sunbeds CLI and exits with non-zero status on error.
func Execute() {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)

	version.AttachCobraVersionCommand(rootCmd)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

// newManager builds a manager from the persistent flags for the given command.
func newManager(cmd *cobra.Command) (context.Context, *manager.Manager, error) {
	// Set context with logger name for tracking.
	ctx := logger.WithName(cmd.Context(), "sunbeds")

	m, err := manager.New(ctx, &manager.Options{
		ConfigPath: configPath,
		DataFile:   dataFile,
		LogLevel:   logLevel,
		Out:        cmd.OutOrStdout(),
	})
	if err != nil {
		return nil, nil, err
	}

	ctx = logger.WithKV(ctx, "data_file", m.DataFile())

	// Actor is optional log context.
	if actor, err := manager.DetectActor(); err == nil {
		ctx = logger.WithKV(ctx, "actor", actor)
	}

	return ctx, m, nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&dataFile, "data-file", "d", "", "path to the sun bed data file (overrides configuration)")
	rootCmd.PersistentFlags().
		StringVarP(&logLevel, "log-level", "l", "", "log level: debug, info, warn or error (overrides configuration)")

	rootCmd.AddCommand(
		addCmd,
		removeCmd,
		toggleCmd,
		statusCmd,
		freeAllCmd,
		endDayCmd,
		watchCmd,
	)
}

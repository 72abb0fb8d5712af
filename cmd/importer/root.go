package main

import (
	"github.com/riskibarqy/overmind/internal/config"
	"github.com/riskibarqy/overmind/internal/platform/logging"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "importer",
		Short:         "Import StarCraft II replays into the overmind catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newImportCommand(),
		newExtractCommand(),
		newVersionCommand(),
	)
	return root
}

// setupLogger installs the process logger for cfg and returns its flush func.
func setupLogger(cfg config.Config) (*logging.Logger, func()) {
	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With(
		"service", cfg.ServiceName,
		"env", cfg.AppEnv,
	)
	logging.SetDefault(logger)
	return logger, func() { _ = logger.Sync() }
}

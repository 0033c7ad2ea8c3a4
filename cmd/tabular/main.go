// Package main provides the tabular CLI: inspection, validation, and
// checksumming of dataset metadata sidecars.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tabular-io/tabular/internal/config"
)

// Version information.
const (
	version = "0.3.0"
	name    = "tabular"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.GetEnvLogLevel(config.EnvLogLevel, slog.LevelInfo),
	}))

	root := &cobra.Command{
		Use:           name,
		Short:         "Inspect and validate dataset metadata sidecars",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addCommands(root, logger)

	if err := root.Execute(); err != nil {
		logger.Error("Command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

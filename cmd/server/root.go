package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cesargomez89/requestline/internal/config"
	"github.com/cesargomez89/requestline/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "requestline",
	Short:         "requestline is a song request queue for live events.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute runs the selected command. Without a subcommand the server starts.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Default().Error("Command failed", "command", os.Args[1:], "error", err)
		os.Exit(1)
	}
}

// loadConfig loads and validates configuration and builds the logger.
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("configuration error: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	return cfg, log, nil
}

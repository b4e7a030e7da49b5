package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/upb/lenny-lens/config"
	"github.com/upb/lenny-lens/internal/observability"
	"go.uber.org/zap"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "lens",
	Short: "Lenny Lens - conversational search over podcast transcripts",
	Long: `Lenny Lens answers questions about the Lenny's Podcast archive by
retrieving transcript passages from PostgreSQL (pgvector) and
synthesizing an answer with an OpenAI chat model.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// setup loads configuration and builds the logger shared by every command.
func setup(ctx context.Context) (*config.Config, *zap.Logger, error) {
	cfg, err := config.New(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.Observability.LogLevel
	if debug {
		level = "debug"
	}
	logger, err := observability.NewLogger(observability.LoggerOptions{
		Level:       level,
		Format:      cfg.Observability.LogFormat,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, logger, nil
}

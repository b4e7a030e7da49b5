package main

import (
	"github.com/spf13/cobra"
	"github.com/upb/lenny-lens/repositories/postgres"
	"go.uber.org/zap"
)

var migrateStatus bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long:  `Creates the pgvector extension, the chunks table and the query log table, or reports their state with --status.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, logger, err := setup(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		factory, err := postgres.NewRepositoryFactory(cfg, logger)
		if err != nil {
			logger.Error("failed to connect to database", zap.Error(err))
			return err
		}
		defer factory.Close()

		if migrateStatus {
			return factory.GetDB().MigrationStatus(ctx)
		}
		return factory.Migrate(ctx)
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "print applied and pending migrations instead of applying them")
	rootCmd.AddCommand(migrateCmd)
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/upb/lenny-lens/app"
	"github.com/upb/lenny-lens/routes"
	"go.uber.org/zap"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Connects to the database, starts the query log writers and serves the search API until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, logger, err := setup(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		if err := cfg.RequireOpenAI(); err != nil {
			logger.Error("invalid configuration", zap.Error(err))
			return err
		}

		deps, err := app.NewDependencies(ctx, cfg, logger)
		if err != nil {
			logger.Error("failed to initialize dependencies", zap.Error(err))
			return err
		}

		if migrateOnStart {
			if err := deps.RepoFactory.Migrate(ctx); err != nil {
				logger.Error("failed to apply migrations", zap.Error(err))
				_ = deps.Close(context.Background())
				return err
			}
		}

		if err := deps.Start(ctx); err != nil {
			_ = deps.Close(context.Background())
			return err
		}

		srv := &http.Server{
			Addr:         cfg.Server.Address(),
			Handler:      routes.SetupRoutes(deps),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("lens API listening",
				zap.String("addr", srv.Addr),
				zap.String("environment", cfg.Environment))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		var serveErr error
		select {
		case <-ctx.Done():
			logger.Info("shutdown signal received")
		case serveErr = <-errCh:
			if serveErr != nil {
				logger.Error("server error", zap.Error(serveErr))
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
		if err := deps.Close(shutdownCtx); err != nil {
			logger.Error("failed to close dependencies", zap.Error(err))
		}

		logger.Info("lens API stopped")
		return serveErr
	},
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply pending database migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

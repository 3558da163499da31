package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/akave-ai/protokoll/internal/config"
	"github.com/akave-ai/protokoll/internal/database"
	"github.com/akave-ai/protokoll/internal/repository"
	"github.com/akave-ai/protokoll/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (default)",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	nrApp := startNewRelic(cfg, log)
	if nrApp != nil {
		defer nrApp.Shutdown(5 * time.Second)
	}

	store, closeStore, err := openStore(ctx, cfg, log, nrApp != nil)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := server.New(cfg, server.Deps{Store: store, Logger: log, NewRelic: nrApp})
	log.Info().
		Str("store", cfg.Store.Driver).
		Str("logs_dir", cfg.Logs.Dir).
		Msg("starting protokoll")
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func startNewRelic(cfg *config.Config, log zerolog.Logger) *newrelic.Application {
	obs := cfg.Observability
	if !obs.NewRelicEnabled() {
		return nil
	}
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(obs.AppName()),
		newrelic.ConfigLicense(obs.NewRelic.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(false),
	)
	if err != nil {
		log.Warn().Err(err).Msg("new relic disabled")
		return nil
	}
	return app
}

// openStore returns the configured store and a function releasing it.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger, newRelic bool) (repository.Store, func(), error) {
	if cfg.Store.Driver != "postgres" {
		return repository.NewMemory(), func() {}, nil
	}

	if err := database.RunMigrations(ctx, cfg.Store.DatabaseURL, log); err != nil {
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	pool, err := database.NewPool(ctx, cfg.Store.DatabaseURL, log, database.PoolOptions{
		MaxConns: cfg.Store.MaxConns,
		NewRelic: newRelic,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("database pool: %w", err)
	}
	return repository.NewPostgres(pool), pool.Close, nil
}

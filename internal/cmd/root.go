package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/akave-ai/protokoll/internal/config"
	"github.com/akave-ai/protokoll/internal/logger"
)

var envFile string

// rootCmd runs the server when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "protokoll",
	Short: "Protokoll collects browser logs into daily JSON Lines files",
	Long: `Protokoll receives structured log entries over HTTP, keeps them in memory,
appends them to logs/protokoll_<date>.log and serves them back to a small
web page. Subcommands inspect and archive the daily files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment (ignored when missing)")
}

// loadConfig reads the configuration and builds the process logger.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return nil, logger.Bootstrap(), err
	}
	return cfg, logger.New(cfg.Observability), nil
}

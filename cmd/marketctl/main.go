package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/freelance_market/internal/config"
	pkgdb "github.com/Skotchmaster/freelance_market/pkg/db"
	"github.com/Skotchmaster/freelance_market/pkg/logging"
)

var Version = "dev"

var envFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "marketctl",
		Short:         "Operational commands for the freelance market",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if envFile != "" {
				config.LoadEnvFile(envFile)
			} else {
				config.LoadEnvFile()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load before reading the environment")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(relayCmd())
	rootCmd.AddCommand(reindexCmd())
	return rootCmd
}

// setup reads the environment and opens the database.
func setup(cmd *cobra.Command) (context.Context, config.ServiceConfig, *gorm.DB, error) {
	cfg := config.FromEnv()
	logger := logging.New(cfg.LogLevel).With("service", "marketctl", "command", cmd.Name())
	slog.SetDefault(logger)
	ctx := logging.IntoContext(cmd.Context(), logger)

	if cfg.DatabaseURL == "" {
		return nil, cfg, nil, errors.New("DATABASE_URL (or DB_HOST) is not set")
	}

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	db, err := pkgdb.Open(openCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, cfg, nil, fmt.Errorf("open database: %w", err)
	}
	return ctx, cfg, db, nil
}

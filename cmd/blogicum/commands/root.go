// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package commands defines the blogicum command line.
package commands

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"blogicum/internal/config"
	"blogicum/internal/database"
	"blogicum/internal/logging"
)

var (
	// Loaded by the root command before any subcommand runs.
	cfg       *config.Config
	logCloser io.Closer

	// Global flags
	logLevel string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "blogicum",
	Short: "Blogicum - a multi-author blog",
	Long: `Blogicum is a multi-author blog: public and category feeds, author
profiles, scheduled posts with images, and comments.

Run "blogicum serve" to start the web server. The admin commands manage
categories, locations and accounts from the shell.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}

		var logger *slog.Logger
		logger, logCloser = logging.New(logging.Options{
			Level: cfg.LogLevel,
			File:  cfg.LogFile,
			Out:   os.Stderr,
		})
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")
}

// openDB connects to PostgreSQL and applies pending migrations.
func openDB(ctx context.Context) (*sql.DB, error) {
	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

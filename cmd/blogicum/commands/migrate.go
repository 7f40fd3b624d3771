// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package commands

import (
	"time"

	"github.com/spf13/cobra"

	"blogicum/internal/admin"
	"blogicum/internal/database"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		return db.Close()
	},
}

// migrateStatusCmd shows migration status
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Connect(cmd.Context(), cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		states, err := database.Status(cmd.Context(), db)
		if err != nil {
			return err
		}
		return admin.Migrations(cmd.OutOrStdout(), states, cfg.AdminEmptyValue, time.Now())
	},
}

// seedCmd fills an empty database with demo content.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo content into an empty database",
	Long: `Create a superuser (admin / admin), two categories, a location and a
handful of posts covering the public, draft and scheduled cases. Does
nothing when any user already exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()
		return database.Seed(cmd.Context(), db)
	},
}

func init() {
	migrateCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rosterd Contributors

package main

import (
	"context"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	authpg "github.com/rosterd/rosterd/internal/auth/postgres"
	"github.com/rosterd/rosterd/internal/config"
	"github.com/rosterd/rosterd/internal/store"
)

// Default timeout for prune command.
const defaultPruneTimeout = 30 * time.Second

// NewPruneCmd creates the prune subcommand.
func NewPruneCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete expired sessions",
		Long: `Delete expired sessions from the database. Expired sessions are already
invisible to the API; pruning reclaims their storage. Intended to run
periodically, e.g. from cron.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPrune(cmd, timeout)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", defaultPruneTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

func runPrune(cmd *cobra.Command, timeout time.Duration) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required (set DATABASE_URL or database.url)")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()

	sessionRepo := authpg.NewSessionRepository(pool)
	deleted, err := sessionRepo.DeleteExpired(ctx)
	if err != nil {
		return oops.Code("PRUNE_FAILED").With("operation", "delete expired sessions").Wrap(err)
	}

	cmd.Printf("Deleted %d expired sessions\n", deleted)
	return nil
}

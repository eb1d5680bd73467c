// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rosterd Contributors

package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/rosterd/rosterd/internal/auth"
	authpg "github.com/rosterd/rosterd/internal/auth/postgres"
	"github.com/rosterd/rosterd/internal/config"
	"github.com/rosterd/rosterd/internal/store"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	username string
	timeout  time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the initial admin account",
		Long: `Creates an admin account so the roster can be managed. The password is
read from the ROSTERD_ADMIN_PASSWORD environment variable so it never
appears in shell history. This command is idempotent - it will not
overwrite an account that already exists.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.username, "username", "admin", "admin account username")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, seedCfg *seedConfig) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required (set DATABASE_URL or database.url)")
	}

	password := os.Getenv("ROSTERD_ADMIN_PASSWORD")
	if password == "" {
		return oops.Code("CONFIG_INVALID").Errorf("ROSTERD_ADMIN_PASSWORD environment variable is required")
	}

	// Add timeout to prevent indefinite hangs
	// Use cmd.Context() to respect SIGINT/SIGTERM signals
	ctx, cancel := context.WithTimeout(cmd.Context(), seedCfg.timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()

	hash, err := auth.NewArgon2idHasher().Hash(password)
	if err != nil {
		return oops.Code("SEED_FAILED").With("operation", "hash admin password").Wrap(err)
	}

	admin, err := auth.NewUser(seedCfg.username, hash, auth.RoleAdmin)
	if err != nil {
		return oops.Code("SEED_FAILED").With("operation", "build admin user").Wrap(err)
	}

	userRepo := authpg.NewUserRepository(pool)
	if err := userRepo.Create(ctx, admin); err != nil {
		// The unique index makes a rerun harmless
		if errors.Is(err, auth.ErrDuplicateUsername) {
			cmd.Printf("Account %q already exists, skipping seed\n", seedCfg.username)
			return nil
		}
		return oops.Code("SEED_FAILED").With("operation", "create admin user").Wrap(err)
	}

	cmd.Printf("Created admin account %q\n", seedCfg.username)
	return nil
}

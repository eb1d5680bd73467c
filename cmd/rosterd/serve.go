// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rosterd Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/rosterd/rosterd/internal/access"
	"github.com/rosterd/rosterd/internal/auth"
	authpg "github.com/rosterd/rosterd/internal/auth/postgres"
	"github.com/rosterd/rosterd/internal/config"
	"github.com/rosterd/rosterd/internal/logging"
	"github.com/rosterd/rosterd/internal/observability"
	"github.com/rosterd/rosterd/internal/store"
	"github.com/rosterd/rosterd/internal/students"
	studentpg "github.com/rosterd/rosterd/internal/students/postgres"
	"github.com/rosterd/rosterd/internal/web"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the rosterd API server",
		Long: `Start the rosterd API server. Serves the JSON API on the configured
address and, unless disabled, a metrics/health endpoint on a second one.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runServeWithDeps(cmd.Context(), cfg, cmd, nil)
		},
	}

	// Flag names mirror config file keys so the two layer cleanly.
	cmd.Flags().String("server.addr", config.DefaultServerAddr, "API listen address")
	cmd.Flags().String("server.observability_addr", config.DefaultObservabilityAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("database.url", "", "PostgreSQL URL (default: DATABASE_URL env)")
	cmd.Flags().String("log.format", config.DefaultLogFormat, "log format (json or text)")
	cmd.Flags().String("log.level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	cmd.Flags().Duration("session.ttl", config.DefaultSessionTTL, "session lifetime")
	cmd.Flags().Bool("session.cookie_secure", false, "set the Secure attribute on session cookies")

	return cmd
}

// runServeWithDeps starts the server with injectable dependencies.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	if deps.PoolFactory == nil {
		deps.PoolFactory = store.Connect
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}
	if deps.WebServerFactory == nil {
		deps.WebServerFactory = func(addr string, authSvc web.AuthService, studentSvc web.StudentService, gate web.Authenticator, cookie web.CookieConfig, metrics *observability.Metrics, logger *slog.Logger) (WebServer, error) {
			return web.NewServer(addr, authSvc, studentSvc, gate, cookie, metrics, logger)
		}
	}

	logging.SetDefault("rosterd", version, cfg.Log.Format, cfg.Log.Level)
	logger := slog.Default()

	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required (set DATABASE_URL or database.url)")
	}

	slog.Info("starting rosterd",
		"addr", cfg.Server.Addr,
		"log_format", cfg.Log.Format,
	)

	pool, err := deps.PoolFactory(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if pool != nil {
			pool.Close()
		}
	}()

	slog.Info("connected to database")

	userRepo := authpg.NewUserRepository(pool)
	sessionRepo := authpg.NewSessionRepository(pool)
	studentRepo := studentpg.NewStudentRepository(pool)

	authSvc, err := auth.NewServiceWithLogger(userRepo, sessionRepo, auth.NewArgon2idHasher(), cfg.Session.TTL, logger)
	if err != nil {
		return err
	}
	gate, err := access.NewGate(authSvc, userRepo)
	if err != nil {
		return err
	}
	studentSvc, err := students.NewService(studentRepo, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start observability server if configured
	var obsServer ObservabilityServer
	var metrics *observability.Metrics
	if cfg.Server.ObservabilityAddr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Server.ObservabilityAddr, func() bool {
			return pool == nil || pool.Ping(context.Background()) == nil
		})
		obsErrChan, obsErr := obsServer.Start()
		if obsErr != nil {
			return obsErr
		}
		metrics = obsServer.Metrics()
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		slog.Info("observability server started", "addr", obsServer.Addr())
	}

	cookie := web.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
		MaxAge: cfg.Session.TTL,
	}

	webServer, err := deps.WebServerFactory(cfg.Server.Addr, authSvc, studentSvc, gate, cookie, metrics, logger)
	if err != nil {
		return stopAndReturn(obsServer, err)
	}
	webErrChan, err := webServer.Start()
	if err != nil {
		return stopAndReturn(obsServer, err)
	}
	go monitorServerErrors(ctx, cancel, webErrChan, "web")

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("rosterd started")
	slog.Info("rosterd ready", "addr", webServer.Addr())

	// Wait for shutdown signal or server failure
	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	// Graceful shutdown
	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := webServer.Stop(shutdownCtx); err != nil {
		slog.Warn("error stopping web server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", "error", err)
		}
	}

	slog.Info("shutdown complete")
	return nil
}

// stopAndReturn stops an already-started observability server before
// propagating a startup failure.
func stopAndReturn(obsServer ObservabilityServer, err error) error {
	if obsServer != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stopCancel()
		if stopErr := obsServer.Stop(stopCtx); stopErr != nil {
			slog.Warn("failed to stop observability server during cleanup", "error", stopErr)
		}
	}
	return err
}

// monitorServerErrors cancels the run context when a server reports an error.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errChan <-chan error, name string) {
	select {
	case err, ok := <-errChan:
		if ok && err != nil {
			slog.Error("server failed", "server", name, "error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rosterd Contributors

// Package web serves the rosterd HTTP API.
//
// Routes are declared alongside an access rule set so every request
// passes through a single authorization checkpoint before reaching a
// handler. Handlers translate between HTTP and the auth and students
// services; they never make access decisions themselves.
package web

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/rosterd/rosterd/internal/access"
	"github.com/rosterd/rosterd/internal/auth"
	"github.com/rosterd/rosterd/internal/observability"
	"github.com/rosterd/rosterd/internal/students"
)

// AuthService is the slice of the auth service the web layer consumes.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*auth.User, error)
	Login(ctx context.Context, username, password string) (*auth.Session, string, error)
	Logout(ctx context.Context, token string) error
}

// StudentService is the slice of the student service the web layer consumes.
type StudentService interface {
	Create(ctx context.Context, actor access.Context, in students.Input) (*students.Student, error)
	List(ctx context.Context) ([]*students.Student, error)
	GetByID(ctx context.Context, id ulid.ULID) (*students.Student, error)
	Update(ctx context.Context, actor access.Context, id ulid.ULID, in students.Input) (*students.Student, error)
	Delete(ctx context.Context, actor access.Context, id ulid.ULID) error
}

// Authenticator resolves a session token to an identity and checks
// requirements against it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (access.Context, error)
	Check(c access.Context, req Requirement) error
}

// Requirement aliases the access package's requirement levels so callers
// of Authenticator don't need a second import.
type Requirement = access.Requirement

// CookieConfig controls the session cookie the server issues on login.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// Server is the rosterd API server.
type Server struct {
	addr       string
	listener   net.Listener
	httpServer *http.Server
	engine     *gin.Engine
	running    atomic.Bool

	authSvc    AuthService
	studentSvc StudentService
	gate       Authenticator
	rules      *access.RuleSet
	cookie     CookieConfig
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// defaultRules is the route access policy: reads need a session, student
// writes need an admin, and the auth endpoints are open.
func defaultRules() []access.Rule {
	return []access.Rule{
		{Pattern: "/register", Methods: []string{http.MethodPost}, Require: access.RequireNone},
		{Pattern: "/login", Methods: []string{http.MethodPost}, Require: access.RequireNone},
		{Pattern: "/logout", Methods: []string{http.MethodPost}, Require: access.RequireNone},
		{Pattern: "/me", Methods: []string{http.MethodGet}, Require: access.RequireAuthenticated},
		{Pattern: "/students", Methods: []string{http.MethodGet}, Require: access.RequireAuthenticated},
		{Pattern: "/students/*", Methods: []string{http.MethodGet}, Require: access.RequireAuthenticated},
		{Pattern: "/students", Methods: []string{http.MethodPost}, Require: access.RequireAdmin},
		{Pattern: "/students/*", Methods: []string{http.MethodPut, http.MethodDelete}, Require: access.RequireAdmin},
	}
}

// NewServer wires routes, middleware and the access rule set.
// metrics may be nil when no observability server is running.
func NewServer(addr string, authSvc AuthService, studentSvc StudentService, gate Authenticator, cookie CookieConfig, metrics *observability.Metrics, logger *slog.Logger) (*Server, error) {
	if authSvc == nil {
		return nil, oops.Errorf("auth service is required")
	}
	if studentSvc == nil {
		return nil, oops.Errorf("student service is required")
	}
	if gate == nil {
		return nil, oops.Errorf("access gate is required")
	}
	if cookie.Name == "" {
		return nil, oops.Errorf("cookie name is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	ruleSet, err := access.NewRuleSet(defaultRules())
	if err != nil {
		return nil, err
	}

	s := &Server{
		addr:       addr,
		authSvc:    authSvc,
		studentSvc: studentSvc,
		gate:       gate,
		rules:      ruleSet,
		cookie:     cookie,
		metrics:    metrics,
		logger:     logger,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.requestLog())
	if metrics != nil {
		engine.Use(s.countRequests())
	}
	engine.Use(s.resolveIdentity())
	engine.Use(s.enforceAccess())

	engine.POST("/register", s.handleRegister)
	engine.POST("/login", s.handleLogin)
	engine.POST("/logout", s.handleLogout)
	engine.GET("/me", s.handleMe)

	engine.GET("/students", s.handleListStudents)
	engine.POST("/students", s.handleCreateStudent)
	engine.GET("/students/:id", s.handleGetStudent)
	engine.PUT("/students/:id", s.handleUpdateStudent)
	engine.DELETE("/students/:id", s.handleDeleteStudent)

	s.engine = engine
	return s, nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start begins serving the API. It returns an error channel that receives
// any error from the HTTP server after it starts; the channel is closed
// on graceful stop.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("web server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("web server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("web server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_web_server").Wrap(err)
		}
	}

	s.logger.Info("web server stopped")
	return nil
}

// Addr returns the address the server is listening on, or "" if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

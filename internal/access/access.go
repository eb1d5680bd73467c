// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rosterd Contributors

// Package access provides the authorization checkpoint for rosterd.
//
// Every protected handler receives its identity exclusively through this
// package's Context, produced by Gate.Authenticate from the current session
// snapshot. Handlers never read session state directly. Denial is the
// default: an absent or invalid session yields an unauthenticated Context,
// and role rules must be satisfied explicitly.
package access

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/rosterd/rosterd/internal/auth"
)

// ErrUnauthenticated is returned when no valid session backs a request.
// The transport maps it to a 401 with a login redirect hint.
var ErrUnauthenticated = oops.Code("ACCESS_UNAUTHENTICATED").Errorf("authentication required")

// ErrForbidden is returned when the caller is authenticated but lacks the
// required role. Never conflated with ErrUnauthenticated.
var ErrForbidden = oops.Code("ACCESS_FORBIDDEN").Errorf("insufficient role")

// Context is the per-request identity projection handed downstream. It is
// derived fresh from the session on every request and never cached beyond
// one request.
type Context struct {
	Authenticated bool
	UserID        ulid.ULID
	Username      string
	Role          auth.Role
}

// IsAdmin reports whether the context carries the admin role.
func (c Context) IsAdmin() bool {
	return c.Authenticated && c.Role == auth.RoleAdmin
}

// SessionValidator resolves a session token to a live session.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*auth.Session, error)
}

// UserResolver resolves a user by ID.
type UserResolver interface {
	GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error)
}

// Gate is the single mandatory checkpoint between the transport and the
// protected handlers.
type Gate struct {
	sessions SessionValidator
	users    UserResolver
}

// NewGate creates a new Gate.
func NewGate(sessions SessionValidator, users UserResolver) (*Gate, error) {
	if sessions == nil {
		return nil, oops.Code("ACCESS_GATE_INVALID").Errorf("session validator is required")
	}
	if users == nil {
		return nil, oops.Code("ACCESS_GATE_INVALID").Errorf("user resolver is required")
	}
	return &Gate{sessions: sessions, users: users}, nil
}

// Authenticate resolves a session token into a Context.
//
// A missing, unknown, or expired token yields an unauthenticated Context and
// a nil error. A session whose user record no longer resolves is treated the
// same way: the session reference is weak and the gate must not trust it.
// Only storage failures return a non-nil error, so the caller can
// distinguish "not logged in" from "cannot tell right now".
//
// Role comes from the session snapshot, not the user row: a role change
// takes effect at the next login.
func (g *Gate) Authenticate(ctx context.Context, token string) (Context, error) {
	if token == "" {
		return Context{}, nil
	}

	session, err := g.sessions.ValidateSession(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return Context{}, nil
		}
		return Context{}, oops.Code("ACCESS_CHECK_FAILED").
			With("operation", "validate session").
			Wrap(err)
	}

	if _, err := g.users.GetByID(ctx, session.UserID); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return Context{}, nil
		}
		return Context{}, oops.Code("ACCESS_CHECK_FAILED").
			With("operation", "resolve session user").
			Wrap(err)
	}

	return Context{
		Authenticated: true,
		UserID:        session.UserID,
		Username:      session.Username,
		Role:          session.Role,
	}, nil
}

// Check enforces a requirement against a Context.
func (g *Gate) Check(c Context, req Requirement) error {
	switch req {
	case RequireNone:
		return nil
	case RequireAuthenticated:
		if !c.Authenticated {
			return ErrUnauthenticated
		}
		return nil
	case RequireAdmin:
		if !c.Authenticated {
			return ErrUnauthenticated
		}
		if c.Role != auth.RoleAdmin {
			return ErrForbidden
		}
		return nil
	default:
		return oops.Code("ACCESS_CHECK_FAILED").
			With("requirement", int(req)).
			Errorf("unknown requirement")
	}
}

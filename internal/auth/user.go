// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rosterd Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Role is the coarse authorization tier attached to a user.
type Role string

// Defined roles. RoleUser is the default for self-service registration;
// RoleAdmin accounts are provisioned via the seed command.
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a defined role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// MaxUsernameLength matches the users.username column width.
const MaxUsernameLength = 50

// User represents an account. The record is immutable after registration;
// the password hash is opaque and must never be logged or returned to
// clients.
type User struct {
	ID           ulid.ULID
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// NewUser creates a validated User with a fresh ID.
func NewUser(username, passwordHash string, role Role) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_INVALID_INPUT").Errorf("password hash cannot be empty")
	}
	if role == "" {
		role = RoleUser
	}
	if !role.Valid() {
		return nil, oops.Code("AUTH_INVALID_INPUT").
			With("role", string(role)).
			Errorf("unknown role %q", role)
	}

	return &User{
		ID:           ulid.Make(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// ValidateUsername validates a username. Usernames are case-sensitive;
// uniqueness is enforced by the repository, not here.
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code("AUTH_INVALID_INPUT").Errorf("username cannot be empty")
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("AUTH_INVALID_INPUT").
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	return nil
}

// UserRepository manages user persistence (the credential store).
//
// Implementations must enforce username uniqueness atomically: of two
// concurrent Create calls with the same username, exactly one succeeds and
// the other returns ErrDuplicateUsername, with no partial write.
type UserRepository interface {
	// Create stores a new user. Returns ErrDuplicateUsername (wrapped) if
	// the username is taken.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByUsername retrieves a user by username (case-sensitive).
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rosterd Contributors

// Package authtest provides in-memory test doubles for the auth repositories.
package authtest

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rosterd/rosterd/internal/auth"
)

// UserRepo is an in-memory auth.UserRepository. The username uniqueness
// check and insert happen under one lock, matching the atomicity the real
// store gets from its unique index.
type UserRepo struct {
	mu    sync.Mutex
	users map[ulid.ULID]auth.User
	names map[string]ulid.ULID
}

// NewUserRepo creates an empty UserRepo.
func NewUserRepo() *UserRepo {
	return &UserRepo{
		users: make(map[ulid.ULID]auth.User),
		names: make(map[string]ulid.ULID),
	}
}

// Create stores a new user or returns auth.ErrDuplicateUsername.
func (r *UserRepo) Create(_ context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.names[user.Username]; taken {
		return auth.ErrDuplicateUsername
	}
	r.users[user.ID] = *user
	r.names[user.Username] = user.ID
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	out := u
	return &out, nil
}

// GetByUsername retrieves a user by username (case-sensitive).
func (r *UserRepo) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.names[username]
	if !ok {
		return nil, auth.ErrNotFound
	}
	u := r.users[id]
	out := u
	return &out, nil
}

// SetRole rewrites the stored role for a user, bypassing immutability.
// Exists so tests can show that issued sessions keep their snapshot.
func (r *UserRepo) SetRole(id ulid.ULID, role auth.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.Role = role
		r.users[id] = u
	}
}

// Delete removes a user so tests can exercise the dangling-session path.
func (r *UserRepo) Delete(id ulid.ULID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		delete(r.names, u.Username)
		delete(r.users, id)
	}
}

// Count returns the number of stored users with the given username.
func (r *UserRepo) Count(username string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.users {
		if u.Username == username {
			n++
		}
	}
	return n
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepo)(nil)

// SessionRepo is an in-memory auth.SessionRepository keyed by token hash.
type SessionRepo struct {
	mu       sync.Mutex
	sessions map[string]auth.Session
}

// NewSessionRepo creates an empty SessionRepo.
func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: make(map[string]auth.Session)}
}

// Create stores a new session.
func (r *SessionRepo) Create(_ context.Context, session *auth.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.TokenHash] = *session
	return nil
}

// GetByTokenHash retrieves a session; expired sessions read as not found.
func (r *SessionRepo) GetByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[tokenHash]
	if !ok || s.IsExpired() {
		return nil, auth.ErrNotFound
	}
	out := s
	return &out, nil
}

// Delete removes a session; deleting a missing session is a no-op.
func (r *SessionRepo) Delete(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, tokenHash)
	return nil
}

// DeleteByUser removes all sessions for a user.
func (r *SessionRepo) DeleteByUser(_ context.Context, userID ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, hash)
		}
	}
	return nil
}

// DeleteExpired removes expired sessions and returns the count.
func (r *SessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var n int64
	for hash, s := range r.sessions {
		if now.After(s.ExpiresAt) {
			delete(r.sessions, hash)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions.
func (r *SessionRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Compile-time interface check.
var _ auth.SessionRepository = (*SessionRepo)(nil)

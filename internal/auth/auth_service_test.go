// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rosterd Contributors

package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterd/rosterd/internal/auth"
	"github.com/rosterd/rosterd/internal/auth/authtest"
	"github.com/rosterd/rosterd/pkg/errutil"
)

func newTestService(t *testing.T) (*auth.Service, *authtest.UserRepo, *authtest.SessionRepo) {
	t.Helper()
	users := authtest.NewUserRepo()
	sessions := authtest.NewSessionRepo()
	svc, err := auth.NewService(users, sessions, auth.NewArgon2idHasher(), time.Hour)
	require.NoError(t, err)
	return svc, users, sessions
}

func TestNewService(t *testing.T) {
	users := authtest.NewUserRepo()
	sessions := authtest.NewSessionRepo()
	hasher := auth.NewArgon2idHasher()

	t.Run("valid dependencies", func(t *testing.T) {
		svc, err := auth.NewService(users, sessions, hasher, time.Hour)
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("nil users repository", func(t *testing.T) {
		_, err := auth.NewService(nil, sessions, hasher, time.Hour)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "users repository is required")
	})

	t.Run("nil sessions repository", func(t *testing.T) {
		_, err := auth.NewService(users, nil, hasher, time.Hour)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sessions repository is required")
	})

	t.Run("nil hasher", func(t *testing.T) {
		_, err := auth.NewService(users, sessions, nil, time.Hour)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "password hasher is required")
	})

	t.Run("zero TTL selects default", func(t *testing.T) {
		svc, err := auth.NewService(users, sessions, hasher, 0)
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account with user role", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		user, err := svc.Register(ctx, "alice", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, auth.RoleUser, user.Role)
		assert.NotEqual(t, "correct horse", user.PasswordHash, "password must be stored hashed")
	})

	t.Run("rejects empty username", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.Register(ctx, "", "password")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_INPUT")
	})

	t.Run("rejects empty password", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.Register(ctx, "alice", "")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_INPUT")
	})

	t.Run("duplicate username", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.Register(ctx, "alice", "first password")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "alice", "second password")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrDuplicateUsername)
		errutil.AssertErrorCode(t, err, "AUTH_DUPLICATE_USERNAME")
	})

	t.Run("usernames are case sensitive", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.Register(ctx, "alice", "password one")
		require.NoError(t, err)

		// Different case is a different account
		_, err = svc.Register(ctx, "Alice", "password two")
		require.NoError(t, err)
	})

	t.Run("concurrent registrations of one username admit exactly one", func(t *testing.T) {
		svc, users, _ := newTestService(t)

		const attempts = 8
		var wg sync.WaitGroup
		errs := make([]error, attempts)

		for i := range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = svc.Register(ctx, "contested", "some password")
			}()
		}
		wg.Wait()

		var successes int
		for _, err := range errs {
			if err == nil {
				successes++
			} else {
				assert.ErrorIs(t, err, auth.ErrDuplicateUsername)
			}
		}
		assert.Equal(t, 1, successes)
		assert.Equal(t, 1, users.Count("contested"))
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials issue a session", func(t *testing.T) {
		svc, _, sessions := newTestService(t)

		user, err := svc.Register(ctx, "alice", "correct horse")
		require.NoError(t, err)

		session, token, err := svc.Login(ctx, "alice", "correct horse")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, user.ID, session.UserID)
		assert.Equal(t, "alice", session.Username)
		assert.Equal(t, auth.RoleUser, session.Role)
		assert.Equal(t, 1, sessions.Len())

		// Only the hash is stored, never the plaintext token
		assert.Equal(t, auth.HashSessionToken(token), session.TokenHash)
		assert.NotEqual(t, token, session.TokenHash)
	})

	t.Run("wrong password and unknown user return the same error", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.Register(ctx, "alice", "correct horse")
		require.NoError(t, err)

		_, _, wrongPassErr := svc.Login(ctx, "alice", "wrong")
		_, _, unknownUserErr := svc.Login(ctx, "nobody", "wrong")

		require.Error(t, wrongPassErr)
		require.Error(t, unknownUserErr)
		// The identical value, so callers cannot distinguish the cases
		assert.Equal(t, wrongPassErr, unknownUserErr)
		assert.ErrorIs(t, wrongPassErr, auth.ErrInvalidCredentials)
	})

	t.Run("login is case sensitive on username", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.Register(ctx, "alice", "correct horse")
		require.NoError(t, err)

		_, _, err = svc.Login(ctx, "Alice", "correct horse")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, _, err := svc.Login(ctx, "", "password")
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_INPUT")

		_, _, err = svc.Login(ctx, "alice", "")
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_INPUT")
	})

	t.Run("independent logins get distinct sessions", func(t *testing.T) {
		svc, _, sessions := newTestService(t)

		_, err := svc.Register(ctx, "alice", "correct horse")
		require.NoError(t, err)

		s1, t1, err := svc.Login(ctx, "alice", "correct horse")
		require.NoError(t, err)
		s2, t2, err := svc.Login(ctx, "alice", "correct horse")
		require.NoError(t, err)

		assert.NotEqual(t, t1, t2)
		assert.NotEqual(t, s1.ID, s2.ID)
		assert.Equal(t, 2, sessions.Len())
	})
}

func TestService_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("destroys the session", func(t *testing.T) {
		svc, _, sessions := newTestService(t)

		_, err := svc.Register(ctx, "alice", "correct horse")
		require.NoError(t, err)
		_, token, err := svc.Login(ctx, "alice", "correct horse")
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, token))
		assert.Equal(t, 0, sessions.Len())

		_, err = svc.ValidateSession(ctx, token)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("idempotent", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.Register(ctx, "alice", "correct horse")
		require.NoError(t, err)
		_, token, err := svc.Login(ctx, "alice", "correct horse")
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, token))
		require.NoError(t, svc.Logout(ctx, token))
	})

	t.Run("unknown token is a no-op", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		assert.NoError(t, svc.Logout(ctx, "never-issued"))
	})

	t.Run("empty token is a no-op", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		assert.NoError(t, svc.Logout(ctx, ""))
	})

	t.Run("only the named session dies", func(t *testing.T) {
		svc, _, sessions := newTestService(t)

		_, err := svc.Register(ctx, "alice", "correct horse")
		require.NoError(t, err)
		_, t1, err := svc.Login(ctx, "alice", "correct horse")
		require.NoError(t, err)
		_, t2, err := svc.Login(ctx, "alice", "correct horse")
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, t1))
		assert.Equal(t, 1, sessions.Len())

		_, err = svc.ValidateSession(ctx, t2)
		assert.NoError(t, err)
	})
}

func TestService_ValidateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token resolves the session", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		user, err := svc.Register(ctx, "alice", "correct horse")
		require.NoError(t, err)
		_, token, err := svc.Login(ctx, "alice", "correct horse")
		require.NoError(t, err)

		session, err := svc.ValidateSession(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, session.UserID)
	})

	t.Run("empty token rejected", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.ValidateSession(ctx, "")
		assert.Error(t, err)
	})

	t.Run("unknown token reads as not found", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.ValidateSession(ctx, "never-issued")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("expired session reads as not found", func(t *testing.T) {
		svc, _, sessions := newTestService(t)

		user, err := svc.Register(ctx, "alice", "correct horse")
		require.NoError(t, err)

		// Plant a session that expired a minute ago
		token, tokenHash, err := auth.GenerateSessionToken()
		require.NoError(t, err)
		session, err := auth.NewSession(user, tokenHash, time.Now().Add(-time.Minute))
		require.NoError(t, err)
		require.NoError(t, sessions.Create(ctx, session))

		_, err = svc.ValidateSession(ctx, token)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

// TestService_EndToEnd walks the full account lifecycle the way the HTTP
// layer drives it.
func TestService_EndToEnd(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newTestService(t)

	// Two users register
	alice, err := svc.Register(ctx, "alice", "alice password")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "bob", "bob password")
	require.NoError(t, err)

	// Alice is promoted to admin out of band
	users.SetRole(alice.ID, auth.RoleAdmin)

	// Bob logs in; his session carries the user role
	bobSession, bobToken, err := svc.Login(ctx, "bob", "bob password")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, bobSession.Role)

	// Alice logs in after promotion; her session carries admin
	aliceSession, aliceToken, err := svc.Login(ctx, "alice", "alice password")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, aliceSession.Role)

	// Both sessions validate independently
	got, err := svc.ValidateSession(ctx, bobToken)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)

	got, err = svc.ValidateSession(ctx, aliceToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	// Bob logs out; Alice is unaffected
	require.NoError(t, svc.Logout(ctx, bobToken))
	_, err = svc.ValidateSession(ctx, bobToken)
	assert.ErrorIs(t, err, auth.ErrNotFound)

	_, err = svc.ValidateSession(ctx, aliceToken)
	assert.NoError(t, err)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rosterd Contributors

package auth

import (
	"errors"

	"github.com/samber/oops"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateUsername is returned when a username is already taken.
// Repository implementations map their storage-level uniqueness violation
// to this sentinel so the service layer never inspects driver errors.
var ErrDuplicateUsername = errors.New("username already taken")

// ErrInvalidCredentials is returned for every failed login, whether the
// username is unknown or the password is wrong. Both paths return this exact
// value so callers cannot distinguish the cause.
var ErrInvalidCredentials = oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid username or password")

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rosterd Contributors

// Package auth provides authentication primitives for rosterd.
//
// # Domain Types
//
// Domain types (User, Session) should be created using their respective
// constructors:
//   - NewUser - creates a User with validated username and password hash
//   - NewSession - creates a Session snapshotting a User's identity and role
//
// Direct struct initialization bypasses validation and may create invalid
// state. Repository implementations receive pre-validated types from these
// constructors.
//
// # Services
//
// Service coordinates registration, login, logout, and session validation
// against a UserRepository, a SessionRepository, and a PasswordHasher. It is
// created with NewService, which validates its dependencies.
//
// Sessions snapshot the user's role at login time. A role change on the user
// record does not affect an already-issued session until the next login.
package auth

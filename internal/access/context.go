// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rosterd Contributors

package access

import "context"

type identityKey struct{}

// WithIdentity returns a context carrying the gate's identity projection.
func WithIdentity(ctx context.Context, c Context) context.Context {
	return context.WithValue(ctx, identityKey{}, c)
}

// IdentityFrom extracts the identity projection placed by WithIdentity.
// The second return is false when no gate ran for this request.
func IdentityFrom(ctx context.Context) (Context, bool) {
	c, ok := ctx.Value(identityKey{}).(Context)
	return c, ok
}

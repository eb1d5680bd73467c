// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rosterd Contributors

package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rosterd/rosterd/internal/access"
	"github.com/rosterd/rosterd/pkg/errutil"
)

const identityContextKey = "rosterd.identity"

// identityFrom returns the identity resolved for this request. The zero
// Context (anonymous) is returned when resolution did not run.
func identityFrom(c *gin.Context) access.Context {
	if v, ok := c.Get(identityContextKey); ok {
		if id, ok := v.(access.Context); ok {
			return id
		}
	}
	return access.Context{}
}

// resolveIdentity reads the session cookie and resolves it to an identity.
// A missing, expired or unknown token yields the anonymous identity; only
// store failures abort the request.
func (s *Server) resolveIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(s.cookie.Name)
		if err != nil {
			// No cookie: anonymous.
			c.Set(identityContextKey, access.Context{})
			c.Next()
			return
		}

		identity, authErr := s.gate.Authenticate(c.Request.Context(), token)
		if authErr != nil {
			errutil.LogError(s.logger, "identity resolution failed", authErr)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    "STORE_UNAVAILABLE",
				"message": "could not verify session",
			})
			return
		}

		c.Set(identityContextKey, identity)
		c.Request = c.Request.WithContext(access.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// enforceAccess applies the route rule set to the resolved identity.
// Unauthenticated and forbidden are kept distinct: the first means "log
// in", the second means "logged in but not allowed".
func (s *Server) enforceAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		required := s.rules.Required(c.Request.Method, c.Request.URL.Path)
		identity := identityFrom(c)

		// Match by oops error code rather than errors.Is: OopsError.Is
		// treats any two oops errors as equal, which would conflate the
		// unauthenticated and forbidden sentinels.
		err := s.gate.Check(identity, required)
		switch {
		case err == nil:
			c.Next()
		case errutil.ErrorCode(err) == "ACCESS_UNAUTHENTICATED":
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":     "ACCESS_UNAUTHENTICATED",
				"message":  "authentication required",
				"redirect": "/login",
			})
		case errutil.ErrorCode(err) == "ACCESS_FORBIDDEN":
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "ACCESS_FORBIDDEN",
				"message": "admin role required",
			})
		default:
			errutil.LogError(s.logger, "access check failed", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    "STORE_UNAVAILABLE",
				"message": "could not check access",
			})
		}
	}
}

// requestLog logs each request with identity attribution when present.
func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if identity := identityFrom(c); identity.Authenticated {
			attrs = append(attrs, "username", identity.Username)
		}
		s.logger.Info("request", attrs...)
	}
}

// countRequests records per-request metrics.
func (s *Server) countRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.metrics.RequestsTotal.WithLabelValues(
			c.Request.Method,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}

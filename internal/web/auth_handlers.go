// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rosterd Contributors

package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rosterd/rosterd/internal/observability"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) recordLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *Server) recordRegistration(outcome string) {
	if s.metrics != nil {
		s.metrics.RegistrationsTotal.WithLabelValues(outcome).Inc()
	}
}

// handleRegister creates a new account. New accounts always get the user
// role; admins are provisioned out of band.
func (s *Server) handleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "AUTH_INVALID_INPUT",
			"message": "request body must be JSON with username and password",
		})
		return
	}

	user, err := s.authSvc.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.recordRegistration(observability.OutcomeRejected)
		s.respondError(c, err)
		return
	}

	s.recordRegistration(observability.OutcomeSuccess)
	c.JSON(http.StatusCreated, gin.H{
		"id":       user.ID.String(),
		"username": user.Username,
		"role":     string(user.Role),
	})
}

// handleLogin verifies credentials and issues a session cookie.
func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "AUTH_INVALID_INPUT",
			"message": "request body must be JSON with username and password",
		})
		return
	}

	session, token, err := s.authSvc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.recordLogin(observability.OutcomeFailure)
		s.respondError(c, err)
		return
	}

	s.setSessionCookie(c, token, int(s.cookie.MaxAge.Seconds()))
	s.recordLogin(observability.OutcomeSuccess)
	s.logger.Info("login", "username", session.Username)
	c.Status(http.StatusNoContent)
}

// handleLogout destroys the current session. Destroying a session that no
// longer exists is not an error; the cookie is cleared either way.
func (s *Server) handleLogout(c *gin.Context) {
	token, err := c.Cookie(s.cookie.Name)
	if err == nil && token != "" {
		if logoutErr := s.authSvc.Logout(c.Request.Context(), token); logoutErr != nil {
			s.respondError(c, logoutErr)
			return
		}
	}

	s.setSessionCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

// handleMe returns the identity behind the current session.
func (s *Server) handleMe(c *gin.Context) {
	identity := identityFrom(c)
	c.JSON(http.StatusOK, gin.H{
		"id":       identity.UserID.String(),
		"username": identity.Username,
		"role":     string(identity.Role),
	})
}

func (s *Server) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookie.Name, value, maxAge, "/", "", s.cookie.Secure, true)
}

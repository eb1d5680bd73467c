// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rosterd Contributors

package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rosterd/rosterd/pkg/errutil"
)

// respondError maps a service error to an HTTP response. Client-caused
// errors carry their message through; everything else is masked as a
// generic 500 so storage details never leak to callers.
func (s *Server) respondError(c *gin.Context, err error) {
	status := errutil.HTTPStatus(err)
	code := errutil.ErrorCode(err)

	if status >= http.StatusInternalServerError {
		errutil.LogError(s.logger, "request failed", err)
		if code == "" {
			code = "INTERNAL"
		}
		c.JSON(status, gin.H{
			"code":    code,
			"message": "internal error",
		})
		return
	}

	c.JSON(status, gin.H{
		"code":    code,
		"message": err.Error(),
	})
}

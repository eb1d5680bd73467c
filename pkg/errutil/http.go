// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rosterd Contributors

package errutil

import (
	"net/http"
	"strings"

	"github.com/samber/oops"
)

// ErrorCode extracts the oops error code from err, or "" if err is not an
// oops error or carries no code.
func ErrorCode(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		if code, ok := oopsErr.Code().(string); ok {
			return code
		}
	}
	return ""
}

// HTTPStatus maps an error to the HTTP status code its category warrants.
// Unknown errors map to 500 so storage and infrastructure failures are
// never mistaken for client mistakes.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch code := ErrorCode(err); {
	case code == "AUTH_INVALID_CREDENTIALS":
		return http.StatusUnauthorized
	case code == "ACCESS_UNAUTHENTICATED":
		return http.StatusUnauthorized
	case code == "ACCESS_FORBIDDEN":
		return http.StatusForbidden
	case code == "AUTH_DUPLICATE_USERNAME":
		return http.StatusConflict
	case code == "STUDENT_NOT_FOUND", code == "AUTH_NOT_FOUND":
		return http.StatusNotFound
	case code == "AUTH_INVALID_INPUT":
		return http.StatusBadRequest
	case strings.HasPrefix(code, "STUDENT_INVALID_"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

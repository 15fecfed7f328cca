/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package middleware

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// IfMatchRequiredMessage is the detail of the 428 response
const IfMatchRequiredMessage = "If-Match header is required"

// IfMatchVersion parses the If-Match header as a resource version. Both the bare and the quoted
// form of the entity tag are accepted.
func IfMatchVersion(r *http.Request) (int, error) {
	value := strings.TrimSpace(r.Header.Get("If-Match"))
	value = strings.Trim(value, `"`)
	if value == "" {
		return 0, fmt.Errorf("missing If-Match header")
	}
	version, err := strconv.Atoi(value)
	if err != nil || version < 0 {
		return 0, fmt.Errorf("invalid If-Match header '%s'", r.Header.Get("If-Match"))
	}
	return version, nil
}

// RequireIfMatch rejects requests using any of the given methods with 428 unless they carry an
// If-Match header holding a version. It runs ahead of the request validation so that a missing
// precondition is reported first.
func RequireIfMatch(methods ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(methods, r.Method) {
				if _, err := IfMatchVersion(r); err != nil {
					ProblemDetails(w, IfMatchRequiredMessage, http.StatusPreconditionRequired)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
)

// interceptor works around http.ServeMux writing its 404 and 405 responses as plain text. Those
// responses are rewritten as problem details so that every error has the same shape.
//
// see: https://github.com/golang/go/issues/65648
type interceptor struct {
	original    http.ResponseWriter
	statusCode  int
	intercepted bool
}

// Header returns the headers stored in the underlying original ResponseWriter
func (e *interceptor) Header() http.Header {
	return e.original.Header()
}

// WriteHeader switches a plain text error response to problem details before the header is
// sent. The body is converted by Write.
func (e *interceptor) WriteHeader(statusCode int) {
	if statusCode >= http.StatusBadRequest && strings.Contains(e.original.Header().Get("Content-Type"), "text/plain") {
		e.original.Header().Set("Content-Type", ProblemDetailsContentType)
		e.original.Header().Del("Content-Length")
		e.intercepted = true
	}
	e.statusCode = statusCode
	e.original.WriteHeader(statusCode)
}

// Write passes the data through, or wraps it in a problem when the response was intercepted.
func (e *interceptor) Write(data []byte) (int, error) {
	if !e.intercepted {
		return e.original.Write(data) //nolint:wrapcheck
	}
	out, _ := json.Marshal(NewProblem(e.statusCode, strings.TrimSpace(string(data))))
	if _, err := e.original.Write(out); err != nil {
		return 0, err //nolint:wrapcheck
	}
	return len(data), nil
}

// ErrorJsonifier returns problem details instead of the default plain text errors
func ErrorJsonifier() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(&interceptor{original: w}, r)
		})
	}
}

/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/openshift-kni/oran-dsapi/internal/service/common/api/middleware"
	"github.com/openshift-kni/oran-dsapi/internal/service/common/auth"
)

// maxCapturedBody limits the part of an error response kept to extract its message
const maxCapturedBody = 64 * 1024

// responseCapture remembers the status and the error body of the response
type responseCapture struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *responseCapture) WriteHeader(status int) {
	if c.status == 0 {
		c.status = status
	}
	c.ResponseWriter.WriteHeader(status)
}

func (c *responseCapture) Write(data []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	if c.status >= http.StatusBadRequest && c.body.Len() < maxCapturedBody {
		c.body.Write(data)
	}
	return c.ResponseWriter.Write(data) //nolint:wrapcheck
}

// message returns the detail of the problem written to the response, or its text
func (c *responseCapture) message() string {
	var problem middleware.Problem
	if err := json.Unmarshal(c.body.Bytes(), &problem); err == nil && problem.Detail != "" {
		return problem.Detail
	}
	if text := strings.TrimSpace(c.body.String()); text != "" {
		return text
	}
	return http.StatusText(c.status)
}

// Middleware records one audit event for every mutating request below the collection path. The
// id of the addressed resource is the path segment following the collection. It must run after the
// authenticator so that the caller is known.
func Middleware(recorder *Recorder, collection string) middleware.Middleware {
	collection = strings.TrimSuffix(collection, "/")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, audited := (Outcome{Method: r.Method}).operation(); !audited {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				slog.WarnContext(r.Context(), "Failed to read request body for audit", "error", err.Error())
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			capture := &responseCapture{ResponseWriter: w}
			defer func() {
				panicked := recover()
				if panicked != nil {
					if panicked == http.ErrAbortHandler { // nolint: errorlint
						panic(panicked)
					}
					slog.ErrorContext(r.Context(), "Recovered from panic",
						"panic", fmt.Sprint(panicked), "stack", string(debug.Stack()))
					if capture.status == 0 {
						middleware.ProblemDetails(capture, http.StatusText(http.StatusInternalServerError),
							http.StatusInternalServerError)
					}
					capture.status = http.StatusInternalServerError
				}

				outcome := Outcome{
					Method:   r.Method,
					Status:   capture.status,
					Body:     decodeBody(body),
					PathID:   resourceID(r.URL.Path, collection),
					Query:    r.URL.Query(),
					Location: w.Header().Get("Location"),
				}
				if outcome.Status == 0 {
					outcome.Status = http.StatusOK
				}
				if outcome.Status >= http.StatusBadRequest {
					outcome.Message = capture.message()
				}
				if identity, ok := auth.IdentityFrom(r.Context()); ok {
					outcome.Identity = identity
				}
				recorder.Record(r.Context(), outcome)
			}()

			next.ServeHTTP(capture, r)
		})
	}
}

// resourceID returns the path segment following the collection path
func resourceID(path, collection string) string {
	rest, found := strings.CutPrefix(path, collection+"/")
	if !found {
		return ""
	}
	rest, _, _ = strings.Cut(rest, "/")
	return rest
}

func decodeBody(body []byte) map[string]any {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil
	}
	return fields
}

/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/google/uuid"
	oapimiddleware "github.com/oapi-codegen/nethttp-middleware"

	"github.com/openshift-kni/oran-dsapi/internal/logging"
)

type Middleware = func(http.Handler) http.Handler

// ChainHandlers applies each middleware in order to the base router. The last one is the
// outermost.
func ChainHandlers(base http.Handler, wrappers ...Middleware) http.Handler {
	h := base
	for _, wrap := range wrappers {
		h = wrap(h)
	}
	return h
}

type durationLogger struct {
	http.ResponseWriter
	statusCode int
}

func (d *durationLogger) WriteHeader(statusCode int) {
	d.statusCode = statusCode
	d.ResponseWriter.WriteHeader(statusCode)
}

func (d *durationLogger) Write(data []byte) (int, error) {
	if d.statusCode == 0 {
		d.statusCode = http.StatusOK
	}
	return d.ResponseWriter.Write(data) // nolint: wrapcheck
}

// LogDuration log time taken to complete a request.
func LogDuration() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()
			d := durationLogger{
				ResponseWriter: w,
			}
			next.ServeHTTP(&d, r)
			slog.InfoContext(r.Context(), "Request completed",
				"status", d.statusCode, "duration", time.Since(startTime).String())
		})
	}
}

// RequestIDHeader carries the request identifier in both directions
const RequestIDHeader = "X-Request-ID"

// RequestContext attaches a request identifier, the method and the path to the request context so
// that every log record written while serving the request carries them. A valid identifier sent
// by the client is reused.
func RequestContext() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			ctx := logging.AppendCtx(r.Context(), slog.String(logging.RequestIDKey, id))
			ctx = logging.AppendCtx(ctx, slog.String("method", r.Method))
			ctx = logging.AppendCtx(ctx, slog.String("path", r.URL.Path))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SecurityHeaders sets the response headers that keep API responses out of caches and browsers.
func SecurityHeaders() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Cache-Control", "no-store, must-revalidate, proxy-revalidate")
			h.Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'")
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			h.Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	}
}

// Recoverer turns a panic in a handler into a 500 problem response.
func Recoverer() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler { // nolint: errorlint
						panic(p)
					}
					slog.ErrorContext(r.Context(), "Recovered from panic",
						"panic", fmt.Sprint(p), "stack", string(debug.Stack()))
					ProblemDetails(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// UUIDValidator ensures a valid UUID in request bodies
type UUIDValidator struct{}

// Validate checks if a string is a valid UUID
func (v UUIDValidator) Validate(value string) error {
	if _, err := uuid.Parse(value); err != nil {
		return err // nolint: wrapcheck
	}
	return nil
}

// OpenAPIValidation validates all incoming requests against the given document
func OpenAPIValidation(swagger *openapi3.T) Middleware {
	// Clear out the servers array in the swagger spec, that skips validating
	// that server names match. We don't know how this thing will be run.
	swagger.Servers = nil

	// explicitly register `merge-patch+json` needed for validation during patch requests
	openapi3filter.RegisterBodyDecoder("application/merge-patch+json", openapi3filter.JSONBodyDecoder)

	// explicitly enable validation for uuid format
	openapi3.DefineStringFormatValidator("uuid", UUIDValidator{})

	return oapimiddleware.OapiRequestValidatorWithOptions(swagger, &oapimiddleware.Options{
		Options: openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			MultiError:         false,
		},
		ErrorHandler: validationErrorHandler,
	})
}

// validationErrorHandler reports validation failures as problem details. Only the first line of the
// validator message is kept since the rest repeats the schema.
func validationErrorHandler(w http.ResponseWriter, message string, statusCode int) {
	if line, _, found := strings.Cut(message, "\n"); found {
		message = line
	}
	ProblemDetails(w, message, statusCode)
}

// TrailingSlashStripper allow API calls with trailing "/"
func TrailingSlashStripper() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/" {
				r.URL.Path = strings.TrimSuffix(r.URL.Path, "/")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ProblemDetailsContentType is the content type of every error response
const ProblemDetailsContentType = "application/problem+json; charset=utf-8"

// Problem is the RFC 7807 body of an error response
type Problem struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// NewProblem returns the problem for the given status code and detail message
func NewProblem(code int, detail string) Problem {
	return Problem{
		Status: code,
		Title:  http.StatusText(code),
		Detail: detail,
	}
}

// ProblemDetails writes an error message using the problem details format
func ProblemDetails(w http.ResponseWriter, body string, code int) {
	w.Header().Set("Content-Type", ProblemDetailsContentType)
	w.WriteHeader(code)
	out, _ := json.Marshal(NewProblem(code, body))
	if _, err := fmt.Fprintln(w, string(out)); err != nil {
		slog.Warn("Failed to write problem details", "error", err)
	}
}

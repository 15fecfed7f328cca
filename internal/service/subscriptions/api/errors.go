/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/openshift-kni/oran-dsapi/internal/service/common/api/middleware"
	"github.com/openshift-kni/oran-dsapi/internal/service/common/auth"
	typederrors "github.com/openshift-kni/oran-dsapi/internal/typed-errors"
)

// StatusFromError maps an error returned by the store to the status code and the message
// returned to the client. Unclassified errors never expose their text.
func StatusFromError(err error) (int, string) {
	switch {
	case typederrors.IsValidationError(err), typederrors.IsMissingTenantError(err):
		return http.StatusBadRequest, err.Error()
	case typederrors.IsAuthenticationError(err), typederrors.IsAuthorizationError(err):
		return http.StatusUnauthorized, auth.UnauthorizedMessage
	case typederrors.IsNotFoundError(err):
		return http.StatusNotFound, http.StatusText(http.StatusNotFound)
	case typederrors.IsConflictError(err):
		return http.StatusConflict, err.Error()
	case typederrors.IsPreconditionRequiredError(err):
		return http.StatusPreconditionRequired, err.Error()
	case typederrors.IsPreconditionFailedError(err):
		return http.StatusPreconditionFailed, err.Error()
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}

// writeError logs the error and writes it as problem details
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := StatusFromError(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "error", err.Error())
	} else {
		slog.DebugContext(r.Context(), "Request rejected", "status", status, "error", err.Error())
	}
	middleware.ProblemDetails(w, message, status)
}

// writeJSON writes the value as the JSON body of the response
func writeJSON(w http.ResponseWriter, r *http.Request, status int, value any) {
	out, err := json.Marshal(value)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(out); err != nil {
		slog.WarnContext(r.Context(), "Failed to write response", "error", err.Error())
	}
}

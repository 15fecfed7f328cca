/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package auth

import (
	"fmt"
	"log/slog"
	"net/http"

	"k8s.io/apiserver/pkg/authentication/authenticator"
	"k8s.io/apiserver/pkg/endpoints/request"

	"github.com/openshift-kni/oran-dsapi/internal/logging"
	"github.com/openshift-kni/oran-dsapi/internal/service/common/api/middleware"
)

// Messages of the authentication failures
var (
	MissingTenantMessage = fmt.Sprintf("Header %q is required", TenantHeader)
	UnauthorizedMessage  = http.StatusText(http.StatusUnauthorized)
)

// Authenticator defines an authentication handler that requires the tenant header and delegates
// the identification of the caller to the supplied request authenticator. The authenticated user is
// loaded into the request context for the authorization checks performed by the handlers.
func Authenticator(handler authenticator.Request) middleware.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get(TenantHeader) == "" {
				middleware.ProblemDetails(w, MissingTenantMessage, http.StatusBadRequest)
				return
			}

			response, ok, err := handler.AuthenticateRequest(req)
			if err != nil {
				slog.WarnContext(req.Context(), "Failed to authenticate request", "error", err)
				middleware.ProblemDetails(w, UnauthorizedMessage, http.StatusUnauthorized)
				return
			}
			if !ok {
				middleware.ProblemDetails(w, UnauthorizedMessage, http.StatusUnauthorized)
				return
			}

			ctx := request.WithUser(req.Context(), response.User)
			if identity, ok := response.User.(*Identity); ok {
				ctx = logging.AppendCtx(ctx, slog.String(logging.TenantIDKey, identity.TenantID))
			}

			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

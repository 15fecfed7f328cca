/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package api

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"k8s.io/apiserver/pkg/authentication/authenticator"

	"github.com/openshift-kni/oran-dsapi/internal/service/common/api/middleware"
	"github.com/openshift-kni/oran-dsapi/internal/service/common/auth"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/internal/audit"
)

// RouterOptions holds the collaborators of the router
type RouterOptions struct {
	Server        *SubscriptionsServer
	Health        *HealthServer
	Authenticator authenticator.Request
	Recorder      *audit.Recorder
	Swagger       *openapi3.T

	// Document serves the OpenAPI document, it is optional
	Document http.Handler
}

// DocumentPath is where the OpenAPI document is served
const DocumentPath = "/openapi"

// NewRouter returns the handler of every endpoint of the server. The subscriptions endpoints
// are authenticated, audited and validated against the OpenAPI document, the probes and the
// document itself are not.
func NewRouter(options RouterOptions) http.Handler {
	api := http.NewServeMux()
	options.Server.register(api)
	subscriptions := middleware.ChainHandlers(api,
		middleware.OpenAPIValidation(options.Swagger),
		middleware.RequireIfMatch(http.MethodPatch),
		audit.Middleware(options.Recorder, CollectionPath),
		auth.Authenticator(options.Authenticator),
		middleware.SecurityHeaders(),
	)

	router := http.NewServeMux()
	router.Handle("/v0/", subscriptions)
	options.Health.register(router)
	if options.Document != nil {
		router.Handle("GET "+DocumentPath, options.Document)
	}
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		middleware.ProblemDetails(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	return middleware.ChainHandlers(router,
		middleware.TrailingSlashStripper(),
		middleware.ErrorJsonifier(),
		middleware.LogDuration(),
		middleware.Recoverer(),
		middleware.RequestContext(),
	)
}

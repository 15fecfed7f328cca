/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package openapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

// HandlerBuilder contains the data and logic needed to create a new handler for the OpenAPI
// metadata. Don't create instances of this type directly, use the NewHandler function instead.
type HandlerBuilder struct {
	logger   *slog.Logger
	document *openapi3.T
}

// Handler knows how to respond to requests for the OpenAPI metadata. Don't create instances of
// this type directly, use the NewHandler function instead.
type Handler struct {
	logger *slog.Logger
	spec   []byte
}

// NewHandler creates a builder that can then be used to configure and create a handler for the
// OpenAPI metadata.
func NewHandler() *HandlerBuilder {
	return &HandlerBuilder{}
}

// SetLogger sets the logger that the handler will use to write to the log. This is mandatory.
func (b *HandlerBuilder) SetLogger(value *slog.Logger) *HandlerBuilder {
	b.logger = value
	return b
}

// SetDocument sets the OpenAPI document that will be served. This is mandatory.
func (b *HandlerBuilder) SetDocument(value *openapi3.T) *HandlerBuilder {
	b.document = value
	return b
}

// Build uses the data stored in the builder to create and configure a new handler.
func (b *HandlerBuilder) Build() (result *Handler, err error) {
	// Check parameters:
	if b.logger == nil {
		err = errors.New("logger is mandatory")
		return
	}
	if b.document == nil {
		err = errors.New("document is mandatory")
		return
	}

	// The document is rendered once, it doesn't change while the server runs:
	spec, err := json.Marshal(b.document)
	if err != nil {
		err = fmt.Errorf("failed to render OpenAPI document: %w", err)
		return
	}

	// Create and populate the object:
	result = &Handler{
		logger: b.logger,
		spec:   spec,
	}
	return
}

// ServeHTTP is the implementation of the object HTTP handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Get the context:
	ctx := r.Context()

	// Send the response:
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(h.spec)
	if err != nil {
		h.logger.ErrorContext(
			ctx,
			"Failed to send data",
			slog.String("error", err.Error()),
		)
	}
}

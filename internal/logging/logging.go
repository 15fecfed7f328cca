/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package logging

import (
	"context"
	"log/slog"
)

//
// This module includes utilities to define a slog handler that includes attributes
// that have been added to the context in order to carry info through an execution
// flow without needing to explicitly include it in all logs.
//

type loggingContextKey string

const (
	slogFields loggingContextKey = "slog_fields"
)

// Attribute names added to the context by the request pipeline.
const (
	RequestIDKey = "request_id"
	TenantIDKey  = "tenant_id"
)

type LoggingContextHandler struct {
	handler slog.Handler
	level   slog.Level
}

// Handle adds attributes from the context to the log record
func (h LoggingContextHandler) Handle(ctx context.Context, record slog.Record) error {
	if attrs, ok := ctx.Value(slogFields).([]slog.Attr); ok {
		record.AddAttrs(attrs...)
	}

	return h.handler.Handle(ctx, record) // nolint: wrapcheck
}

func (h LoggingContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h LoggingContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return LoggingContextHandler{handler: h.handler.WithAttrs(attrs), level: h.level}
}

func (h LoggingContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return LoggingContextHandler{handler: h.handler.WithGroup(name), level: h.level}
}

// NewLoggingContextHandler wraps the given handler. A nil handler means the handler of the
// current default logger.
func NewLoggingContextHandler(handler slog.Handler, level slog.Level) *LoggingContextHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &LoggingContextHandler{
		handler: handler,
		level:   level,
	}
}

// AppendCtx adds an slog attribute to the provided context so that it will be
// included in any Record created with such context
func AppendCtx(ctx context.Context, attr slog.Attr) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	v, _ := ctx.Value(slogFields).([]slog.Attr)
	// Copy so that sibling contexts derived from the same parent don't share a backing array.
	attrs := make([]slog.Attr, len(v), len(v)+1)
	copy(attrs, v)
	return context.WithValue(ctx, slogFields, append(attrs, attr))
}

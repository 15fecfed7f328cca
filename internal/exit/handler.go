/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package exit

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"
)

// HandlerBuilder contains the data and logic needed to build an exit handler.
type HandlerBuilder struct {
	logger  *slog.Logger
	signals []os.Signal
	timeout time.Duration
}

// Handler knows how to wait for exit signals and how to execute exit actions before returning.
type Handler struct {
	logger  *slog.Logger
	signals []os.Signal
	timeout time.Duration
	actions []func(ctx context.Context) error
}

// NewHandler creates a builder that can then be used to configure and create an exit handler.
func NewHandler() *HandlerBuilder {
	return &HandlerBuilder{
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		timeout: 10 * time.Second,
	}
}

// SetLogger sets the logger that the handler will use to write to the log. This is mandatory.
func (b *HandlerBuilder) SetLogger(logger *slog.Logger) *HandlerBuilder {
	b.logger = logger
	return b
}

// AddSignals adds exit signals. Signals SIGINT and SIGTERM are included by default.
func (b *HandlerBuilder) AddSignals(values ...os.Signal) *HandlerBuilder {
	b.signals = append(b.signals, values...)
	return b
}

// SetTimeout sets the time that the exit actions are given to complete. The default is ten
// seconds.
func (b *HandlerBuilder) SetTimeout(value time.Duration) *HandlerBuilder {
	b.timeout = value
	return b
}

// Build uses the data stored in the builder to create and configure a new exit handler.
func (b *HandlerBuilder) Build() (result *Handler, err error) {
	if b.logger == nil {
		err = errors.New("logger is mandatory")
		return
	}
	if len(b.signals) == 0 {
		err = errors.New("at least one signal is required")
		return
	}
	if b.timeout <= 0 {
		err = errors.New("timeout must be positive")
		return
	}

	result = &Handler{
		logger:  b.logger,
		signals: slices.Clone(b.signals),
		timeout: b.timeout,
	}
	return
}

// AddAction adds an action that will be executed prior to exiting.
func (h *Handler) AddAction(value func(ctx context.Context) error) {
	h.actions = append(h.actions, value)
}

// AddServer adds an HTTP server that should be shutdown prior to exiting.
func (h *Handler) AddServer(value *http.Server) {
	h.AddAction(func(ctx context.Context) error {
		h.logger.InfoContext(ctx, "Shutting down server", slog.String("address", value.Addr))
		err := value.Shutdown(ctx)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return err // nolint: wrapcheck
	})
}

// Wait blocks until an exit signal is received or the given context is done, and then runs the
// registered exit actions in order, giving them the configured timeout in total. It returns the
// first error reported by an action.
func (h *Handler) Wait(ctx context.Context) error {
	signalCtx, stop := signal.NotifyContext(ctx, h.signals...)
	defer stop()

	names := make([]string, len(h.signals))
	for i, s := range h.signals {
		names[i] = s.String()
	}
	h.logger.InfoContext(ctx, "Waiting for exit signals", slog.Any("signals", names))
	<-signalCtx.Done()
	h.logger.InfoContext(ctx, "Exit requested", slog.String("cause", context.Cause(signalCtx).Error()))

	return h.runActions()
}

func (h *Handler) runActions() error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	var first error
	for _, action := range h.actions {
		if err := action(ctx); err != nil {
			h.logger.ErrorContext(ctx, "Failed to run exit action", slog.String("error", err.Error()))
			if first == nil {
				first = err
			}
		}
	}
	return first
}

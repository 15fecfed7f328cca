/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

// This file contains the implementations of a handler wrapper that generates Prometheus metrics.

package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HandlerWrapperBuilder contains the data and logic needed to build a new metrics handler wrapper
// that creates HTTP handlers that generate the following Prometheus metrics:
//
//	<subsystem>_request_count - Number of API requests received.
//	<subsystem>_request_duration_sum - Total time to process API requests, in seconds.
//	<subsystem>_request_duration_count - Total number of API requests measured.
//	<subsystem>_request_duration_bucket - Number of API requests organized in buckets.
//
// The metrics have the `method`, `path` and `code` labels. In order to reduce cardinality the
// path label replaces identifiers with `-`, so that for example requests to
// /v0/dataSubscriptions/123 and /v0/dataSubscriptions/456 are both accumulated as
// /v0/dataSubscriptions/-. Only the paths added with AddPath(s) are reported, everything else is
// accumulated in `/-`.
//
// Don't create objects of this type directly; use the NewHandlerWrapper function instead.
type HandlerWrapperBuilder struct {
	paths      []string
	subsystem  string
	buckets    []float64
	registerer prometheus.Registerer
}

// handlerWrapper contains the data and logic needed to wrap an HTTP handler with another one that
// generates Prometheus metrics.
type handlerWrapper struct {
	paths           pathTree
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// handler is an HTTP handler that generates Prometheus metrics.
type handler struct {
	owner   *handlerWrapper
	handler http.Handler
}

// Make sure that we implement the interface:
var _ http.Handler = (*handler)(nil)

// responseWriter is the HTTP response writer used to obtain the response code.
type responseWriter struct {
	http.ResponseWriter
	code int
}

// NewHandlerWrapper creates a new builder that can then be used to configure and create a new
// metrics handler wrapper.
func NewHandlerWrapper() *HandlerWrapperBuilder {
	return &HandlerWrapperBuilder{
		registerer: prometheus.DefaultRegisterer,
		buckets:    []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
	}
}

// AddPath adds a path that will be accepted as a value for the `path` label.
func (b *HandlerWrapperBuilder) AddPath(value string) *HandlerWrapperBuilder {
	b.paths = append(b.paths, value)
	return b
}

// AddPaths adds a list of paths that will be accepted as a value for the `path` label.
func (b *HandlerWrapperBuilder) AddPaths(values ...string) *HandlerWrapperBuilder {
	b.paths = append(b.paths, values...)
	return b
}

// SetSubsystem sets the name of the subsystem that will be used as the prefix of the metric
// names. This is mandatory.
func (b *HandlerWrapperBuilder) SetSubsystem(value string) *HandlerWrapperBuilder {
	b.subsystem = value
	return b
}

// SetBuckets sets the upper bounds, in seconds, of the request duration histogram buckets.
func (b *HandlerWrapperBuilder) SetBuckets(values ...float64) *HandlerWrapperBuilder {
	b.buckets = values
	return b
}

// SetRegisterer sets the Prometheus registerer that will be used to register the metrics. The
// default is to use the default Prometheus registerer. This is intended for unit tests, where it
// is convenient to have a registerer that doesn't interfere with the rest of the system.
func (b *HandlerWrapperBuilder) SetRegisterer(value prometheus.Registerer) *HandlerWrapperBuilder {
	if value == nil {
		value = prometheus.DefaultRegisterer
	}
	b.registerer = value
	return b
}

// Build uses the information stored in the builder to create a new handler wrapper.
func (b *HandlerWrapperBuilder) Build() (result func(http.Handler) http.Handler, err error) {
	if b.subsystem == "" {
		err = fmt.Errorf("subsystem is mandatory")
		return
	}
	if len(b.buckets) == 0 {
		err = fmt.Errorf("at least one duration bucket is mandatory")
		return
	}

	requestCount, err := register(b.registerer, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: b.subsystem,
			Name:      "request_count",
			Help:      "Number of requests received.",
		},
		requestLabelNames,
	))
	if err != nil {
		return
	}

	requestDuration, err := register(b.registerer, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Subsystem: b.subsystem,
			Name:      "request_duration",
			Help:      "Request duration in seconds.",
			Buckets:   b.buckets,
		},
		requestLabelNames,
	))
	if err != nil {
		return
	}

	paths := pathTree{}
	for _, path := range b.paths {
		paths.add(path)
	}

	wrapper := &handlerWrapper{
		paths:           paths,
		requestCount:    requestCount,
		requestDuration: requestDuration,
	}
	result = wrapper.wrap
	return
}

// register registers the collector, or returns the one that is already registered with the same
// description.
func register[C prometheus.Collector](registerer prometheus.Registerer, collector C) (C, error) {
	err := registerer.Register(collector)
	if err == nil {
		return collector, nil
	}
	var alreadyRegisteredError prometheus.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredError) {
		if existing, ok := alreadyRegisteredError.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return collector, fmt.Errorf("failed to register metric: %w", err)
}

// wrap creates a new handler that wraps the given one and generates the Prometheus metrics.
func (w *handlerWrapper) wrap(h http.Handler) http.Handler {
	return &handler{
		owner:   w,
		handler: h,
	}
}

// ServeHTTP is the implementation of the HTTP handler interface.
func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writer := &responseWriter{
		ResponseWriter: w,
		code:           http.StatusOK,
	}

	start := time.Now()
	h.handler.ServeHTTP(writer, r)
	elapsed := time.Since(start)

	labels := prometheus.Labels{
		methodLabelName: methodLabel(r.Method),
		pathLabelName:   pathLabel(h.owner.paths, r.URL.Path),
		codeLabelName:   codeLabel(writer.code),
	}
	h.owner.requestCount.With(labels).Inc()
	h.owner.requestDuration.With(labels).Observe(elapsed.Seconds())
}

// WriteHeader is part of the implementation of the http.ResponseWriter interface.
func (w *responseWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush is the implementation of the http.Flusher interface.
func (w *responseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

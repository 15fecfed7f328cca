/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Defaults of the event fields that can't be derived from the request
const (
	DefaultNamespace = "dsapiSubscription.dataSubscriptions"
	DefaultTenant    = "$PROVIDER"
	DefaultUser      = "$USER"

	// DefaultSubmitTimeout bounds the submission of one event
	DefaultSubmitTimeout = 10 * time.Second
)

// RecorderBuilder contains the data and logic needed to create an audit recorder. Don't create
// instances of this type directly, use the NewRecorder function instead.
type RecorderBuilder struct {
	logger     *slog.Logger
	sink       Sink
	namespace  string
	tenant     string
	ignored    []string
	timeout    time.Duration
	registerer prometheus.Registerer
}

// Recorder turns request outcomes into audit events and submits them
type Recorder struct {
	logger    *slog.Logger
	sink      Sink
	namespace string
	tenant    string
	ignored   []string
	timeout   time.Duration
	now       func() time.Time
	events    *prometheus.CounterVec
	failures  prometheus.Counter
}

// NewRecorder creates a builder that can then be used to configure and create an audit recorder.
func NewRecorder() *RecorderBuilder {
	return &RecorderBuilder{
		namespace:  DefaultNamespace,
		tenant:     DefaultTenant,
		timeout:    DefaultSubmitTimeout,
		registerer: prometheus.DefaultRegisterer,
	}
}

// SetLogger sets the logger. This is mandatory.
func (b *RecorderBuilder) SetLogger(value *slog.Logger) *RecorderBuilder {
	b.logger = value
	return b
}

// SetSink sets the destination of the events. This is mandatory.
func (b *RecorderBuilder) SetSink(value Sink) *RecorderBuilder {
	b.sink = value
	return b
}

// SetNamespace sets the namespace and entity of the events. The default is
// dsapiSubscription.dataSubscriptions.
func (b *RecorderBuilder) SetNamespace(value string) *RecorderBuilder {
	b.namespace = value
	return b
}

// SetTenant sets the tenant the events are reported for. Empty values are ignored.
func (b *RecorderBuilder) SetTenant(value string) *RecorderBuilder {
	if value != "" {
		b.tenant = value
	}
	return b
}

// SetIgnoredFields sets the body fields that are never reported
func (b *RecorderBuilder) SetIgnoredFields(values ...string) *RecorderBuilder {
	b.ignored = append(b.ignored, values...)
	return b
}

// SetSubmitTimeout sets the time allowed to submit one event. Zero or negative values are
// ignored.
func (b *RecorderBuilder) SetSubmitTimeout(value time.Duration) *RecorderBuilder {
	if value > 0 {
		b.timeout = value
	}
	return b
}

// SetRegisterer sets the Prometheus registerer of the event counters. The default is the
// Prometheus default registerer.
func (b *RecorderBuilder) SetRegisterer(value prometheus.Registerer) *RecorderBuilder {
	b.registerer = value
	return b
}

// Build uses the data stored in the builder to create a new recorder.
func (b *RecorderBuilder) Build() (result *Recorder, err error) {
	if b.logger == nil {
		err = errors.New("logger is mandatory")
		return
	}
	if b.sink == nil {
		err = errors.New("sink is mandatory")
		return
	}

	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "audit",
		Name:      "events_total",
		Help:      "Number of audit events recorded.",
	}, []string{"operation", "state"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: "audit",
		Name:      "submit_failures_total",
		Help:      "Number of audit events that could not be submitted.",
	})
	if b.registerer != nil {
		for _, collector := range []prometheus.Collector{events, failures} {
			if err = b.registerer.Register(collector); err != nil {
				var already prometheus.AlreadyRegisteredError
				if !errors.As(err, &already) {
					err = fmt.Errorf("failed to register audit metrics: %w", err)
					return
				}
				err = nil
				switch existing := already.ExistingCollector.(type) {
				case *prometheus.CounterVec:
					events = existing
				case prometheus.Counter:
					failures = existing
				}
			}
		}
	}

	result = &Recorder{
		logger:    b.logger,
		sink:      b.sink,
		namespace: b.namespace,
		tenant:    b.tenant,
		ignored:   b.ignored,
		timeout:   b.timeout,
		now:       time.Now,
		events:    events,
		failures:  failures,
	}
	return
}

// Event builds the event of the outcome. The second value is false when the request is not
// audited.
func (r *Recorder) Event(outcome Outcome) (Event, bool) {
	operation, ok := outcome.operation()
	if !ok {
		return Event{}, false
	}

	state := StateSuccess
	if !outcome.succeeded() {
		state = StateFailure
	}

	return Event{
		Namespace:  r.namespace,
		Operation:  operation,
		State:      state,
		Object:     outcome.object(),
		Attributes: clean(outcome.changes(operation, r.ignored)),
		Tenant:     r.tenant,
		User:       outcome.user(),
		Time:       r.now().UTC(),
	}, true
}

// Record submits the event of the outcome. Failures are logged and not returned. The submission
// is not cancelled with the given context, it is bounded by the submit timeout instead.
func (r *Recorder) Record(ctx context.Context, outcome Outcome) {
	event, ok := r.Event(outcome)
	if !ok {
		return
	}
	r.events.WithLabelValues(string(event.Operation), string(event.State)).Inc()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	start := time.Now()
	if err := r.sink.Submit(ctx, event); err != nil {
		r.failures.Inc()
		r.logger.WarnContext(ctx, "Failed to submit audit event",
			"operation", event.Operation, "state", event.State, "error", err.Error())
		return
	}
	r.logger.DebugContext(ctx, "Audit event submitted",
		"operation", event.Operation, "state", event.State, "duration", time.Since(start).String())
}

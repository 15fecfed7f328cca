/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package audit_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/openshift-kni/oran-dsapi/internal/service/common/api/middleware"
	"github.com/openshift-kni/oran-dsapi/internal/service/common/auth"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/internal/audit"
)

var _ = Describe("Middleware", func() {
	var (
		sink    *fakeSink
		wrap    middleware.Middleware
		handler http.HandlerFunc
	)

	BeforeEach(func() {
		sink = &fakeSink{}
		recorder, err := audit.NewRecorder().
			SetLogger(logger).
			SetSink(sink).
			SetRegisterer(prometheus.NewRegistry()).
			Build()
		Expect(err).NotTo(HaveOccurred())
		wrap = audit.Middleware(recorder, "/v0/dataSubscriptions")
	})

	serve := func(r *http.Request) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		wrap(handler).ServeHTTP(w, r)
		return w
	}

	It("lets the handler read the body and records the created id", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("D1"))
			w.Header().Set("Location", "http://localhost:3000/v0/dataSubscriptions/new-id")
			w.WriteHeader(http.StatusCreated)
		}
		r := httptest.NewRequest(http.MethodPost, "/v0/dataSubscriptions", strings.NewReader(`{"dataSourceId":"D1"}`))
		r = r.WithContext(auth.WithIdentity(r.Context(), &auth.Identity{
			SubjectAttributes: []auth.Attribute{{ShortName: "CN", Value: "ValidClient"}},
		}))

		Expect(serve(r).Code).To(Equal(http.StatusCreated))
		events := sink.Events()
		Expect(events).To(HaveLen(1))
		Expect(events[0].Object.ID).To(Equal("new-id"))
		Expect(events[0].User).To(Equal("ValidClient"))
		Expect(events[0].Attributes).To(ContainElement(audit.Attribute{Name: "dataSourceId", New: "D1"}))
	})

	It("takes the id from the path and the message from the problem", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			middleware.ProblemDetails(w, "Not Found", http.StatusNotFound)
		}
		r := httptest.NewRequest(http.MethodDelete, "/v0/dataSubscriptions/abcd", nil)

		Expect(serve(r).Code).To(Equal(http.StatusNotFound))
		events := sink.Events()
		Expect(events).To(HaveLen(1))
		Expect(events[0].State).To(Equal(audit.StateFailure))
		Expect(events[0].Object.ID).To(Equal("abcd"))
		Expect(events[0].Attributes).To(ContainElement(audit.Attribute{Name: audit.AttributeErrorMessage, New: "Not Found"}))
	})

	It("records a failure when the handler panics", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}
		r := httptest.NewRequest(http.MethodPatch, "/v0/dataSubscriptions/abcd", strings.NewReader(`{"active":false}`))

		w := serve(r)
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Header().Get("Content-Type")).To(Equal(middleware.ProblemDetailsContentType))
		events := sink.Events()
		Expect(events).To(HaveLen(1))
		Expect(events[0].Attributes).To(ContainElement(audit.Attribute{Name: audit.AttributeErrorStatus, New: "500"}))
	})

	It("records the change after the client went away", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		handler = func(w http.ResponseWriter, r *http.Request) {
			cancel()
			w.WriteHeader(http.StatusNoContent)
		}
		r := httptest.NewRequestWithContext(ctx, http.MethodDelete, "/v0/dataSubscriptions/abcd", nil)

		Expect(serve(r).Code).To(Equal(http.StatusNoContent))
		Expect(sink.Events()).To(HaveLen(1))
		errs, deadlines := sink.Contexts()
		Expect(errs).To(Equal([]error{nil}))
		Expect(deadlines[0]).NotTo(BeZero())
	})

	It("skips reads", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}
		serve(httptest.NewRequest(http.MethodGet, "/v0/dataSubscriptions/abcd", nil))
		Expect(sink.Events()).To(BeEmpty())
	})
})

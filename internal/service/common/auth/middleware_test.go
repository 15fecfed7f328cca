/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/apiserver/pkg/authentication/authenticator"

	"github.com/openshift-kni/oran-dsapi/internal/service/common/api/middleware"
)

type fakeAuthenticator struct {
	identity *Identity
	err      error
	calls    int
}

func (f *fakeAuthenticator) AuthenticateRequest(req *http.Request) (*authenticator.Response, bool, error) {
	f.calls++
	if f.err != nil {
		return nil, false, f.err
	}
	if f.identity == nil {
		return nil, false, nil
	}
	return &authenticator.Response{User: f.identity}, true, nil
}

var _ = Describe("Authenticator middleware", func() {
	var (
		fake     *fakeAuthenticator
		seen     *Identity
		handler  http.Handler
		request  *http.Request
		recorder *httptest.ResponseRecorder
	)

	problem := func() middleware.Problem {
		var p middleware.Problem
		Expect(json.Unmarshal(recorder.Body.Bytes(), &p)).To(Succeed())
		return p
	}

	BeforeEach(func() {
		fake = &fakeAuthenticator{}
		seen = nil
		handler = Authenticator(fake)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = IdentityFrom(r.Context())
			w.WriteHeader(http.StatusOK)
		}))
		request = httptest.NewRequest(http.MethodGet, "/v0/dataSubscriptions", nil)
		recorder = httptest.NewRecorder()
	})

	It("requires the tenant header before looking at the certificate", func() {
		handler.ServeHTTP(recorder, request)
		Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		Expect(problem().Detail).To(Equal(`Header "bdcfos-producer-tenantid" is required`))
		Expect(fake.calls).To(BeZero())
	})

	It("rejects an unauthenticated caller", func() {
		request.Header.Set(TenantHeader, "123")
		handler.ServeHTTP(recorder, request)
		Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
		Expect(problem().Detail).To(Equal("Unauthorized"))
	})

	It("rejects on authenticator errors", func() {
		request.Header.Set(TenantHeader, "123")
		fake.err = errors.New("boom")
		handler.ServeHTTP(recorder, request)
		Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
	})

	It("binds the identity to the context", func() {
		request.Header.Set(TenantHeader, "123")
		fake.identity = &Identity{TenantID: "123", Subject: "CN=ValidC"}
		handler.ServeHTTP(recorder, request)
		Expect(recorder.Code).To(Equal(http.StatusOK))
		Expect(seen).To(Equal(fake.identity))
	})
})

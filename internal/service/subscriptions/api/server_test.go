/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package api_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/openshift-kni/oran-dsapi/internal/service/common/api/middleware"
	"github.com/openshift-kni/oran-dsapi/internal/service/common/auth"
	"github.com/openshift-kni/oran-dsapi/internal/openapi"
	svcutils "github.com/openshift-kni/oran-dsapi/internal/service/common/utils"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/api"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/internal/audit"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/internal/store"
	typederrors "github.com/openshift-kni/oran-dsapi/internal/typed-errors"
)

const (
	clientSubject = "O=Company,CN=ValidClient"
	createBody    = `{
		"subscriber": "/a/b/T1",
		"producer": "/x/y/T2",
		"dataSourceId": "D1",
		"schedule": "0 8 * * *",
		"destinationPath": "/p"
	}`
)

var _ = Describe("Subscriptions API", func() {
	var (
		repository  *memoryRepository
		sink        *recordingSink
		router      http.Handler
		certificate string
	)

	BeforeEach(func() {
		repository = &memoryRepository{}
		sink = &recordingSink{}
		certificate = newForwardedCertificate("ValidClient", "Company")

		logger := slog.New(slog.NewJSONHandler(GinkgoWriter, &slog.HandlerOptions{Level: slog.LevelDebug}))
		recorder, err := audit.NewRecorder().
			SetLogger(logger).
			SetSink(sink).
			SetRegisterer(prometheus.NewRegistry()).
			Build()
		Expect(err).NotTo(HaveOccurred())

		swagger, err := api.GetSwagger()
		Expect(err).NotTo(HaveOccurred())

		trust := auth.TrustList{
			{TenantID: "T2", Subject: clientSubject, Issuer: clientSubject},
			{TenantID: "T3", Subject: clientSubject, Issuer: clientSubject},
		}
		config := &api.SubscriptionsServerConfig{
			CommonServerConfig: svcutils.CommonServerConfig{APIURL: "https://dsapi.example.com"},
		}
		document, err := openapi.NewHandler().SetLogger(logger).SetDocument(swagger).Build()
		Expect(err).NotTo(HaveOccurred())

		router = api.NewRouter(api.RouterOptions{
			Server:        &api.SubscriptionsServer{Config: config, Store: store.NewStore(repository)},
			Health:        &api.HealthServer{Database: repository, Version: "1.2.3"},
			Authenticator: auth.NewCertificateAuthenticator(trust, nil),
			Recorder:      recorder,
			Swagger:       swagger,
			Document:      document,
		})
	})

	send := func(method, target, tenant, body string, headers ...string) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		request := httptest.NewRequest(method, target, reader)
		if body != "" {
			request.Header.Set("Content-Type", "application/json")
		}
		if tenant != "" {
			request.Header.Set(auth.TenantHeader, tenant)
		}
		request.Header.Set(auth.ClientCertHeader, certificate)
		for i := 0; i+1 < len(headers); i += 2 {
			request.Header.Set(headers[i], headers[i+1])
		}
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)
		return response
	}

	create := func() string {
		response := send(http.MethodPost, api.CollectionPath, "T2", createBody)
		Expect(response.Code).To(Equal(http.StatusCreated), response.Body.String())
		var id string
		Expect(json.Unmarshal(response.Body.Bytes(), &id)).To(Succeed())
		return id
	}

	problem := func(response *httptest.ResponseRecorder) middleware.Problem {
		Expect(response.Header().Get("Content-Type")).To(Equal(middleware.ProblemDetailsContentType))
		var result middleware.Problem
		Expect(json.Unmarshal(response.Body.Bytes(), &result)).To(Succeed())
		return result
	}

	Describe("lifecycle", func() {
		It("creates a subscription and returns its location", func() {
			response := send(http.MethodPost, api.CollectionPath, "T2", createBody)
			Expect(response.Code).To(Equal(http.StatusCreated))

			var id string
			Expect(json.Unmarshal(response.Body.Bytes(), &id)).To(Succeed())
			Expect(response.Header().Get("Location")).To(Equal(
				"https://dsapi.example.com/v0/dataSubscriptions/" + id))
			Expect(response.Header().Get("X-Content-Type-Options")).To(Equal("nosniff"))
		})

		It("rejects the same subscription twice", func() {
			create()
			response := send(http.MethodPost, api.CollectionPath, "T2", createBody)
			Expect(response.Code).To(Equal(http.StatusConflict))
			Expect(problem(response).Detail).To(Equal("Data subscription already exists"))
		})

		It("returns the subscription with its version as entity tag", func() {
			id := create()
			response := send(http.MethodGet, api.CollectionPath+"/"+id, "T2", "")
			Expect(response.Code).To(Equal(http.StatusOK))
			Expect(response.Header().Get("ETag")).To(Equal(`"0"`))

			var subscription api.DataSubscription
			Expect(json.Unmarshal(response.Body.Bytes(), &subscription)).To(Succeed())
			Expect(subscription.ID.String()).To(Equal(id))
			Expect(subscription.Version).To(Equal(0))
			Expect(subscription.Active).To(BeTrue())
			Expect(*subscription.Schedule).To(Equal("0 8 * * *"))
			Expect(subscription.BeginWatermark).To(Equal(store.Epoch))
			Expect(subscription.UpperWatermark).To(Equal(store.Epoch))
			Expect(subscription.Links.Self.Href).To(HaveSuffix("/v0/dataSubscriptions/" + id))
		})

		It("updates a subscription matching the entity tag", func() {
			id := create()
			response := send(http.MethodPatch, api.CollectionPath+"/"+id, "T2", `{"active": false}`,
				"If-Match", "0")
			Expect(response.Code).To(Equal(http.StatusNoContent), response.Body.String())

			response = send(http.MethodGet, api.CollectionPath+"/"+id, "T2", "")
			Expect(response.Code).To(Equal(http.StatusOK))
			Expect(response.Header().Get("ETag")).To(Equal(`"1"`))
			var subscription api.DataSubscription
			Expect(json.Unmarshal(response.Body.Bytes(), &subscription)).To(Succeed())
			Expect(subscription.Version).To(Equal(1))
			Expect(subscription.Active).To(BeFalse())
		})

		It("rejects an update with a stale entity tag", func() {
			id := create()
			Expect(send(http.MethodPatch, api.CollectionPath+"/"+id, "T2", `{"active": false}`,
				"If-Match", "0").Code).To(Equal(http.StatusNoContent))

			response := send(http.MethodPatch, api.CollectionPath+"/"+id, "T2", `{"destinationPath": "/q"}`,
				"If-Match", "0")
			Expect(response.Code).To(Equal(http.StatusPreconditionFailed))
			Expect(problem(response).Detail).To(Equal(store.PreconditionFailedMessage))

			response = send(http.MethodGet, api.CollectionPath+"/"+id, "T2", "")
			var subscription api.DataSubscription
			Expect(json.Unmarshal(response.Body.Bytes(), &subscription)).To(Succeed())
			Expect(subscription.Version).To(Equal(1))
			Expect(subscription.DestinationPath).To(Equal("/p"))
		})

		It("accepts a quoted entity tag", func() {
			id := create()
			response := send(http.MethodPatch, api.CollectionPath+"/"+id, "T2", `{"destinationPath": "/q"}`,
				"If-Match", `"0"`)
			Expect(response.Code).To(Equal(http.StatusNoContent))
		})

		It("hides subscriptions of other tenants", func() {
			id := create()
			response := send(http.MethodGet, api.CollectionPath+"/"+id, "T3", "")
			Expect(response.Code).To(Equal(http.StatusUnauthorized))
			Expect(problem(response).Detail).To(Equal(auth.UnauthorizedMessage))
		})

		It("deletes a subscription", func() {
			id := create()
			Expect(send(http.MethodDelete, api.CollectionPath+"/"+id, "T3", "").Code).
				To(Equal(http.StatusUnauthorized))
			Expect(send(http.MethodDelete, api.CollectionPath+"/"+id, "T2", "").Code).
				To(Equal(http.StatusNoContent))
			Expect(send(http.MethodGet, api.CollectionPath+"/"+id, "T2", "").Code).
				To(Equal(http.StatusNotFound))
			Expect(send(http.MethodDelete, api.CollectionPath+"/"+id, "T2", "").Code).
				To(Equal(http.StatusNotFound))
		})
	})

	Describe("authentication", func() {
		It("requires the tenant header", func() {
			response := send(http.MethodGet, api.CollectionPath+"?subscriber=/a/b/T1", "", "")
			Expect(response.Code).To(Equal(http.StatusBadRequest))
			Expect(problem(response).Detail).To(Equal(auth.MissingTenantMessage))
		})

		It("rejects a missing certificate", func() {
			certificate = ""
			response := send(http.MethodGet, api.CollectionPath+"?subscriber=/a/b/T1", "T2", "")
			Expect(response.Code).To(Equal(http.StatusUnauthorized))
		})

		It("rejects an untrusted certificate", func() {
			certificate = newForwardedCertificate("Intruder", "Company")
			response := send(http.MethodPost, api.CollectionPath, "T2", createBody)
			Expect(response.Code).To(Equal(http.StatusUnauthorized))
			Expect(sink.Events()).To(BeEmpty())
		})

		It("rejects a tenant missing from the trust list", func() {
			response := send(http.MethodGet, api.CollectionPath+"?subscriber=/a/b/T1", "T9", "")
			Expect(response.Code).To(Equal(http.StatusUnauthorized))
		})

		It("rejects a subscription owned by another tenant", func() {
			response := send(http.MethodPost, api.CollectionPath, "T3", createBody)
			Expect(response.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("validation", func() {
		It("rejects a malformed identifier", func() {
			response := send(http.MethodGet, api.CollectionPath+"/not-a-uuid", "T2", "")
			Expect(response.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects a body missing required fields", func() {
			response := send(http.MethodPost, api.CollectionPath, "T2", `{"subscriber": "/a/b/T1"}`)
			Expect(response.Code).To(Equal(http.StatusBadRequest))
			Expect(repository.records).To(BeEmpty())
		})

		It("rejects producers that are not tenant paths", func() {
			response := send(http.MethodPost, api.CollectionPath, "T2", `{
				"subscriber": "/a/b/T1",
				"producer": "T2",
				"dataSourceId": "D1",
				"destinationPath": "/p"
			}`)
			Expect(response.Code).To(Equal(http.StatusBadRequest))
		})

		It("requires an entity tag to update", func() {
			id := create()
			response := send(http.MethodPatch, api.CollectionPath+"/"+id, "T2", `{"active": false}`)
			Expect(response.Code).To(Equal(http.StatusPreconditionRequired))
			Expect(problem(response).Detail).To(Equal(middleware.IfMatchRequiredMessage))
		})

		It("rejects unknown fields in updates", func() {
			id := create()
			response := send(http.MethodPatch, api.CollectionPath+"/"+id, "T2", `{"producer": "/x/y/T3"}`,
				"If-Match", "0")
			Expect(response.Code).To(Equal(http.StatusBadRequest))
		})

		It("requires the subscriber to list", func() {
			response := send(http.MethodGet, api.CollectionPath, "T2", "")
			Expect(response.Code).To(Equal(http.StatusBadRequest))
		})

		It("reports unknown paths as problems", func() {
			response := send(http.MethodGet, "/unknown", "T2", "")
			Expect(response.Code).To(Equal(http.StatusNotFound))
			Expect(problem(response).Status).To(Equal(http.StatusNotFound))
		})
	})

	Describe("listing", func() {
		createFor := func(dataSource string) {
			body := strings.Replace(createBody, `"D1"`, `"`+dataSource+`"`, 1)
			Expect(send(http.MethodPost, api.CollectionPath, "T2", body).Code).To(Equal(http.StatusCreated))
		}

		It("filters by producer", func() {
			createFor("D1")

			response := send(http.MethodGet, api.CollectionPath+"?subscriber=/a/b/T1&producer=/x/y/T2", "T2", "")
			Expect(response.Code).To(Equal(http.StatusOK))
			var list api.DataSubscriptionList
			Expect(json.Unmarshal(response.Body.Bytes(), &list)).To(Succeed())
			Expect(list.DataSubscriptions).To(HaveLen(1))

			response = send(http.MethodGet, api.CollectionPath+"?subscriber=/a/b/T1&producer=/x/y/T9", "T2", "")
			Expect(response.Code).To(Equal(http.StatusOK))
			Expect(response.Body.String()).To(MatchJSON(`{"dataSubscriptions": [], "next": null}`))
		})

		It("pages through the subscriptions of a subscriber", func() {
			for _, dataSource := range []string{"D1", "D2", "D3"} {
				createFor(dataSource)
			}

			response := send(http.MethodGet, api.CollectionPath+"?subscriber=/a/b/T1&top=2", "T2", "")
			Expect(response.Code).To(Equal(http.StatusOK))
			var page api.DataSubscriptionList
			Expect(json.Unmarshal(response.Body.Bytes(), &page)).To(Succeed())
			Expect(page.DataSubscriptions).To(HaveLen(2))
			Expect(page.DataSubscriptions[0].Links.Self.Href).To(HaveSuffix(page.DataSubscriptions[0].ID.String()))
			Expect(page.Next).NotTo(BeNil())
			Expect(*page.Next).To(ContainSubstring("skip=2"))

			response = send(http.MethodGet, api.CollectionPath+"?subscriber=/a/b/T1&skip=2&top=2", "T2", "")
			Expect(response.Code).To(Equal(http.StatusOK))
			page = api.DataSubscriptionList{}
			Expect(json.Unmarshal(response.Body.Bytes(), &page)).To(Succeed())
			Expect(page.DataSubscriptions).To(HaveLen(1))
			Expect(page.Next).To(BeNil())
		})

		It("leaves out subscriptions of other tenants", func() {
			createFor("D1")
			response := send(http.MethodGet, api.CollectionPath+"?subscriber=/a/b/T1", "T3", "")
			Expect(response.Code).To(Equal(http.StatusOK))
			Expect(response.Body.String()).To(MatchJSON(`{"dataSubscriptions": [], "next": null}`))
		})

		It("rejects a negative skip", func() {
			response := send(http.MethodGet, api.CollectionPath+"?subscriber=/a/b/T1&skip=-1", "T2", "")
			Expect(response.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects a skip beyond the maximum", func() {
			response := send(http.MethodGet, api.CollectionPath+"?subscriber=/a/b/T1&skip=9223372036854775807", "T2", "")
			Expect(response.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("audit", func() {
		It("records the creation", func() {
			response := send(http.MethodPost, api.CollectionPath, "T2", createBody)
			Expect(response.Code).To(Equal(http.StatusCreated))

			events := sink.Events()
			Expect(events).To(HaveLen(1))
			Expect(events[0].Operation).To(Equal(audit.OperationCreate))
			Expect(events[0].State).To(Equal(audit.StateSuccess))
			Expect(events[0].User).To(Equal("ValidClient"))
			Expect(events[0].Attributes[0].Name).To(Equal(audit.AttributeID))
			Expect(response.Header().Get("Location")).To(HaveSuffix(events[0].Attributes[0].New))
		})

		It("records the generated id when the body carries one", func() {
			body := strings.Replace(createBody, "{", `{"id": "spoofed",`, 1)
			response := send(http.MethodPost, api.CollectionPath, "T2", body)
			Expect(response.Code).To(Equal(http.StatusCreated))
			var id string
			Expect(json.Unmarshal(response.Body.Bytes(), &id)).To(Succeed())
			Expect(id).NotTo(Equal("spoofed"))

			events := sink.Events()
			Expect(events).To(HaveLen(1))
			Expect(events[0].Object.ID).To(Equal(id))
			Expect(events[0].Attributes).To(ContainElement(audit.Attribute{Name: audit.AttributeID, New: id}))
			Expect(events[0].Attributes).NotTo(ContainElement(HaveField("New", "spoofed")))
		})

		It("records rejected updates", func() {
			id := create()
			send(http.MethodPatch, api.CollectionPath+"/"+id, "T2", `{"active": false}`, "If-Match", "7")

			events := sink.Events()
			Expect(events).To(HaveLen(2))
			Expect(events[1].Operation).To(Equal(audit.OperationUpdate))
			Expect(events[1].State).To(Equal(audit.StateFailure))
			Expect(events[1].Object.ID).To(Equal(id))
			Expect(events[1].Attributes).To(ContainElement(audit.Attribute{
				Name: audit.AttributeErrorStatus,
				New:  "412",
			}))
		})

		It("does not record reads", func() {
			id := create()
			send(http.MethodGet, api.CollectionPath+"/"+id, "T2", "")
			Expect(sink.Events()).To(HaveLen(1))
		})
	})

	Describe("probes", func() {
		It("reports the service healthy", func() {
			response := send(http.MethodGet, "/probes/health", "", "")
			Expect(response.Code).To(Equal(http.StatusOK))
			Expect(response.Body.String()).To(MatchJSON(`{
				"status": "UP",
				"serviceInfo": {"name": "oran-dsapi", "version": "1.2.3"},
				"components": {"db": {"status": "UP", "database": "postgres"}}
			}`))
		})

		It("serves the OpenAPI document without credentials", func() {
			certificate = ""
			response := send(http.MethodGet, api.DocumentPath, "", "")
			Expect(response.Code).To(Equal(http.StatusOK))
			var document map[string]any
			Expect(json.Unmarshal(response.Body.Bytes(), &document)).To(Succeed())
			Expect(document).To(HaveKeyWithValue("paths", HaveKey(api.CollectionPath)))
		})

		It("is not ready without the database", func() {
			repository.pingErr = errDatabaseDown
			response := send(http.MethodGet, "/probes/health/readiness", "", "")
			Expect(response.Code).To(Equal(http.StatusServiceUnavailable))
			Expect(response.Body.String()).To(MatchJSON(`{"status": "DOWN"}`))
			Expect(send(http.MethodGet, "/probes/health/liveness", "", "").Code).To(Equal(http.StatusOK))
		})
	})
})

var _ = Describe("SubscriptionsServer", func() {
	It("rejects a path id that is not a uuid", func() {
		server := &api.SubscriptionsServer{
			Config: &api.SubscriptionsServerConfig{},
			Store:  store.NewStore(&memoryRepository{}),
		}
		request := httptest.NewRequest(http.MethodGet, api.CollectionPath+"/not-a-uuid", nil)
		request.SetPathValue("id", "not-a-uuid")
		response := httptest.NewRecorder()

		server.GetDataSubscription(response, request)

		Expect(response.Code).To(Equal(http.StatusBadRequest))
		var result middleware.Problem
		Expect(json.Unmarshal(response.Body.Bytes(), &result)).To(Succeed())
		Expect(result.Detail).To(Equal("Invalid subscription id 'not-a-uuid'"))
	})
})

var _ = DescribeTable("StatusFromError",
	func(err error, expectedCode int, expectedMessage string) {
		code, message := api.StatusFromError(err)
		Expect(code).To(Equal(expectedCode))
		Expect(message).To(Equal(expectedMessage))
	},
	Entry("validation", typederrors.NewValidationError(nil, "bad input"), http.StatusBadRequest, "bad input"),
	Entry("missing tenant", typederrors.NewMissingTenantError("no tenant"), http.StatusBadRequest, "no tenant"),
	Entry("authentication", typederrors.NewAuthenticationError(nil, "bad certificate"),
		http.StatusUnauthorized, auth.UnauthorizedMessage),
	Entry("authorization", typederrors.NewAuthorizationError("wrong tenant"),
		http.StatusUnauthorized, auth.UnauthorizedMessage),
	Entry("not found", typederrors.NewNotFoundError("gone"), http.StatusNotFound, "Not Found"),
	Entry("conflict", typederrors.NewConflictError(nil, "duplicate"), http.StatusConflict, "duplicate"),
	Entry("precondition required", typederrors.NewPreconditionRequiredError(nil, "no tag"),
		http.StatusPreconditionRequired, "no tag"),
	Entry("precondition failed", typederrors.NewPreconditionFailedError("stale"),
		http.StatusPreconditionFailed, "stale"),
	Entry("wrapped", fmt.Errorf("storing: %w", typederrors.NewConflictError(nil, "duplicate")),
		http.StatusConflict, "storing: duplicate"),
	Entry("unclassified", errDatabaseDown, http.StatusInternalServerError, "Internal Server Error"),
)

/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/openshift-kni/oran-dsapi/internal/service/common/api/middleware"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/internal/pagination"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/internal/store"
	typederrors "github.com/openshift-kni/oran-dsapi/internal/typed-errors"
)

// CollectionPath is the path of the subscriptions collection
const CollectionPath = "/v0/dataSubscriptions"

// SubscriptionsServer implements the data subscriptions endpoints
type SubscriptionsServer struct {
	Config *SubscriptionsServerConfig
	Store  *store.Store
}

// register adds the endpoints to the router
func (s *SubscriptionsServer) register(router *http.ServeMux) {
	router.HandleFunc("POST "+CollectionPath, s.CreateDataSubscription)
	router.HandleFunc("GET "+CollectionPath, s.GetDataSubscriptions)
	router.HandleFunc("GET "+CollectionPath+"/{id}", s.GetDataSubscription)
	router.HandleFunc("PATCH "+CollectionPath+"/{id}", s.UpdateDataSubscription)
	router.HandleFunc("DELETE "+CollectionPath+"/{id}", s.DeleteDataSubscription)
}

// resourceURL returns the externally visible URL of the subscription
func (s *SubscriptionsServer) resourceURL(id uuid.UUID) string {
	return fmt.Sprintf("%s%s/%s", strings.TrimSuffix(s.Config.APIURL, "/"), CollectionPath, id)
}

func pathID(r *http.Request) (uuid.UUID, error) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", r.PathValue("id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return uuid.Nil, typederrors.NewValidationError(err, "Invalid subscription id '%s'", r.PathValue("id"))
	}
	return id, nil
}

func listParams(r *http.Request) (GetDataSubscriptionsParams, error) {
	var params GetDataSubscriptionsParams
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "subscriber", query, &params.Subscriber); err != nil {
		return params, typederrors.NewValidationError(err, "Invalid format for parameter subscriber: %s", err.Error())
	}
	if err := runtime.BindQueryParameter("form", true, false, "producer", query, &params.Producer); err != nil {
		return params, typederrors.NewValidationError(err, "Invalid format for parameter producer: %s", err.Error())
	}
	return params, nil
}

func decodeBody(r *http.Request, value any) error {
	if err := json.NewDecoder(r.Body).Decode(value); err != nil {
		return typederrors.NewValidationError(err, "Invalid request body: %s", err.Error())
	}
	return nil
}

// CreateDataSubscription receives the API request to this endpoint, executes the request, and responds appropriately
func (s *SubscriptionsServer) CreateDataSubscription(w http.ResponseWriter, r *http.Request) {
	var request store.CreateRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, r, err)
		return
	}

	id, err := s.Store.Create(r.Context(), request)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Location", s.resourceURL(id))
	writeJSON(w, r, http.StatusCreated, id.String())
}

// GetDataSubscriptions receives the API request to this endpoint, executes the request, and responds appropriately
func (s *SubscriptionsServer) GetDataSubscriptions(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	window, err := pagination.FromQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	request := store.ListRequest{
		Skip: window.Skip,
		Top:  window.Top,
	}
	if params.Subscriber != nil {
		request.Subscriber = *params.Subscriber
	}
	if params.Producer != nil && *params.Producer != "" {
		request.Producer = params.Producer
	}
	slog.DebugContext(r.Context(), "Listing data subscriptions",
		"subscriber", request.Subscriber, "window", window.String())

	result, err := s.Store.List(r.Context(), request)
	if err != nil {
		writeError(w, r, err)
		return
	}

	list := DataSubscriptionList{
		DataSubscriptions: make([]DataSubscriptionReference, 0, len(result.Items)),
		Next:              pagination.Next(r, window, result.PageSize),
	}
	for _, item := range result.Items {
		list.DataSubscriptions = append(list.DataSubscriptions, DataSubscriptionReference{
			ID:    item.ID,
			Links: Links{Self: Link{Href: s.resourceURL(item.ID)}},
		})
	}
	writeJSON(w, r, http.StatusOK, list)
}

// GetDataSubscription receives the API request to this endpoint, executes the request, and responds appropriately
func (s *SubscriptionsServer) GetDataSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	record, err := s.Store.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("ETag", fmt.Sprintf("%q", fmt.Sprint(record.Version)))
	writeJSON(w, r, http.StatusOK, toDataSubscription(record, s.resourceURL(record.ID)))
}

// UpdateDataSubscription receives the API request to this endpoint, executes the request, and responds appropriately
func (s *SubscriptionsServer) UpdateDataSubscription(w http.ResponseWriter, r *http.Request) {
	version, err := middleware.IfMatchVersion(r)
	if err != nil {
		writeError(w, r, typederrors.NewPreconditionRequiredError(err, middleware.IfMatchRequiredMessage))
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var request store.UpdateRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.Store.Update(r.Context(), id, version, request); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteDataSubscription receives the API request to this endpoint, executes the request, and responds appropriately
func (s *SubscriptionsServer) DeleteDataSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.Store.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

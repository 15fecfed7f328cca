/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package api

import (
	"context"
	"log/slog"
	"net/http"
)

// Health statuses
const (
	StatusUp   = "UP"
	StatusDown = "DOWN"
)

// ServiceName is reported by the health probe
const ServiceName = "oran-dsapi"

// Pinger checks that a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type ServiceInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type ComponentHealth struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

type Health struct {
	Status      string                     `json:"status"`
	ServiceInfo *ServiceInfo               `json:"serviceInfo,omitempty"`
	Components  map[string]ComponentHealth `json:"components,omitempty"`
}

// HealthServer implements the unauthenticated probes
type HealthServer struct {
	Database Pinger
	Version  string
}

func (h *HealthServer) register(router *http.ServeMux) {
	router.HandleFunc("GET /probes/health", h.GetHealth)
	router.HandleFunc("GET /probes/health/liveness", h.GetLiveness)
	router.HandleFunc("GET /probes/health/readiness", h.GetReadiness)
}

func (h *HealthServer) databaseStatus(ctx context.Context) (string, int) {
	if err := h.Database.Ping(ctx); err != nil {
		slog.ErrorContext(ctx, "Database is not reachable", "error", err.Error())
		return StatusDown, http.StatusServiceUnavailable
	}
	return StatusUp, http.StatusOK
}

// GetHealth reports the service and the database status
func (h *HealthServer) GetHealth(w http.ResponseWriter, r *http.Request) {
	status, code := h.databaseStatus(r.Context())
	writeJSON(w, r, code, Health{
		Status:      status,
		ServiceInfo: &ServiceInfo{Name: ServiceName, Version: h.Version},
		Components: map[string]ComponentHealth{
			"db": {Status: status, Database: "postgres"},
		},
	})
}

// GetLiveness reports that the process is serving requests
func (h *HealthServer) GetLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, Health{Status: StatusUp})
}

// GetReadiness reports whether the database can be reached
func (h *HealthServer) GetReadiness(w http.ResponseWriter, r *http.Request) {
	status, code := h.databaseStatus(r.Context())
	writeJSON(w, r, code, Health{Status: status})
}

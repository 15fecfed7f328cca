/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package utils

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/openshift-kni/oran-dsapi/internal/service/common/db"
)

// VCAPServicesEnvVar is the environment variable holding the service bindings of the platform
const VCAPServicesEnvVar = "VCAP_SERVICES"

const (
	PostgresServiceTag = "postgresql"
	AuditLogServiceTag = "auditlog"
)

// VCAPService is a single service binding
type VCAPService struct {
	Name        string         `json:"name"`
	Label       string         `json:"label"`
	Tags        []string       `json:"tags"`
	Credentials map[string]any `json:"credentials"`
}

// VCAPServices are the service bindings grouped by service label
type VCAPServices map[string][]VCAPService

// LoadVCAPServices parses the service bindings from the environment. An unset variable yields an
// empty set.
func LoadVCAPServices() (VCAPServices, error) {
	return ParseVCAPServices(os.Getenv(VCAPServicesEnvVar))
}

// ParseVCAPServices parses the JSON document of service bindings
func ParseVCAPServices(value string) (VCAPServices, error) {
	services := VCAPServices{}
	if strings.TrimSpace(value) == "" {
		return services, nil
	}
	if err := json.Unmarshal([]byte(value), &services); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", VCAPServicesEnvVar, err)
	}
	return services, nil
}

// FindByTag returns the first binding carrying the given tag
func (v VCAPServices) FindByTag(tag string) (*VCAPService, bool) {
	labels := make([]string, 0, len(v))
	for label := range v {
		labels = append(labels, label)
	}
	slices.Sort(labels)

	for _, label := range labels {
		for i := range v[label] {
			if slices.Contains(v[label][i].Tags, tag) {
				return &v[label][i], true
			}
		}
	}
	return nil, false
}

// Credential returns the string credential found by following the keys, or an empty string.
func (s *VCAPService) Credential(keys ...string) string {
	var current any = s.Credentials
	for _, key := range keys {
		m, ok := current.(map[string]any)
		if !ok {
			return ""
		}
		current = m[key]
	}
	value, _ := current.(string)
	return value
}

// ApplyPostgres overrides the connection details with those of the postgres binding, if any.
// The CA certificate of the binding is written to a temporary file because the driver only
// accepts a path.
func (v VCAPServices) ApplyPostgres(cfg *db.PgConfig) (bool, error) {
	service, found := v.FindByTag(PostgresServiceTag)
	if !found {
		return false, nil
	}

	if uri := service.Credential("uri"); uri != "" {
		u, err := url.Parse(uri)
		if err != nil {
			return false, fmt.Errorf("failed to parse postgres uri of binding '%s': %w", service.Name, err)
		}
		cfg.Host = u.Hostname()
		if port := u.Port(); port != "" {
			cfg.Port = port
		}
		cfg.User = u.User.Username()
		if password, ok := u.User.Password(); ok {
			cfg.Password = password
		}
		cfg.Database = strings.TrimPrefix(u.Path, "/")
		if mode := u.Query().Get("sslmode"); mode != "" {
			cfg.SSLMode = mode
		}
	}

	if cert := service.Credential("sslcert"); cert != "" {
		f, err := os.CreateTemp("", "dsapi-pg-ca-*.pem")
		if err != nil {
			return false, fmt.Errorf("failed to create postgres CA file: %w", err)
		}
		defer f.Close() // nolint: errcheck
		if _, err := f.WriteString(cert); err != nil {
			return false, fmt.Errorf("failed to write postgres CA file: %w", err)
		}
		cfg.SSLRootCert = f.Name()
		if cfg.SSLMode == "" || cfg.SSLMode == "disable" {
			cfg.SSLMode = "verify-ca"
		}
	}

	return true, nil
}

// ApplyAuditLog overrides the audit service URL and OAuth credentials with those of the audit
// log binding, if any.
func (v VCAPServices) ApplyAuditLog(auditURL *string, oauth *OAuthConfig) bool {
	service, found := v.FindByTag(AuditLogServiceTag)
	if !found {
		return false
	}

	if value := service.Credential("url"); value != "" {
		*auditURL = value
	}
	if value := service.Credential("uaa", "clientid"); value != "" {
		oauth.ClientID = value
	}
	if value := service.Credential("uaa", "clientsecret"); value != "" {
		oauth.ClientSecret = value
	}
	if value := service.Credential("uaa", "url"); value != "" {
		oauth.TokenURL = strings.TrimSuffix(value, "/") + "/oauth/token"
	}
	return true
}

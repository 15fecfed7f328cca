/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package api

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/openshift-kni/oran-dsapi/internal/network"
	"github.com/openshift-kni/oran-dsapi/internal/service/common/auth"
	"github.com/openshift-kni/oran-dsapi/internal/service/common/db"
	svcutils "github.com/openshift-kni/oran-dsapi/internal/service/common/utils"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/internal/audit"
)

// DatabaseEnvPrefix prefixes the database variables, for example DSAPI_DB_HOST
const DatabaseEnvPrefix = "dsapi"

// Names of the listeners
const (
	APIListener     = "API"
	MetricsListener = "Metrics"
)

const (
	CertsDetailsFileFlagName   = "certs-details-file"
	CertMatchModeFlagName      = "cert-match-mode"
	AuditURLFlagName           = "audit-url"
	AuditTenantFlagName        = "audit-tenant"
	AuditIgnoredFieldsFlagName = "audit-ignored-fields"
	AuditTimeoutFlagName       = "audit-timeout"
)

// SubscriptionsServerConfig defines the configuration attributes of the subscriptions server
type SubscriptionsServerConfig struct {
	svcutils.CommonServerConfig
	// CertsDetails is the trust list as a JSON or YAML document
	CertsDetails string `envconfig:"CERTS_DETAILS"`
	// CertsDetailsFile is a file holding the trust list, it takes precedence over CertsDetails
	CertsDetailsFile string `envconfig:"CERTS_DETAILS_FILE"`
	// CertMatchMode selects how certificate subjects and issuers are compared with the trust list
	CertMatchMode string `envconfig:"CERT_MATCH_MODE" default:"exact"`
	// AuditURL is the base URL of the audit log service. Events are written to the log when empty.
	AuditURL           string   `envconfig:"AUDIT_URL"`
	AuditTenant        string   `envconfig:"AUDIT_TENANT" default:"$PROVIDER"`
	AuditIgnoredFields []string `envconfig:"AUDIT_IGNORED_FIELDS"`
	// AuditTimeout bounds the submission of one audit event
	AuditTimeout time.Duration `envconfig:"AUDIT_TIMEOUT" default:"10s"`

	// Database is loaded separately with the DatabaseEnvPrefix prefix
	Database db.PgConfig `ignored:"true"`
}

// SetServerFlags creates the flag instances for the server
func SetServerFlags(cmd *cobra.Command, config *SubscriptionsServerConfig) error {
	if err := svcutils.SetCommonServerFlags(cmd, &config.CommonServerConfig); err != nil {
		return fmt.Errorf("could not set common server flags: %w", err)
	}

	flags := cmd.Flags()
	network.AddListenerFlags(flags, APIListener, "0.0.0.0:3000")
	network.AddListenerFlags(flags, MetricsListener, "0.0.0.0:8080")
	flags.StringVar(
		&config.CertsDetailsFile,
		CertsDetailsFileFlagName,
		config.CertsDetailsFile,
		"File holding the trusted client certificates.",
	)
	flags.StringVar(
		&config.CertMatchMode,
		CertMatchModeFlagName,
		auth.MatchModeExact,
		"Comparison of certificate subjects and issuers, 'exact' or 'normalized'.",
	)
	flags.StringVar(
		&config.AuditURL,
		AuditURLFlagName,
		config.AuditURL,
		"Base URL of the audit log service.",
	)
	flags.StringVar(
		&config.AuditTenant,
		AuditTenantFlagName,
		audit.DefaultTenant,
		"Tenant the audit events are reported for.",
	)
	flags.StringSliceVar(
		&config.AuditIgnoredFields,
		AuditIgnoredFieldsFlagName,
		config.AuditIgnoredFields,
		"Request body fields left out of the audit events.",
	)
	flags.DurationVar(
		&config.AuditTimeout,
		AuditTimeoutFlagName,
		audit.DefaultSubmitTimeout,
		"Time allowed to submit one audit event.",
	)
	return nil
}

// LoadFromEnv loads config values from the environment
func (c *SubscriptionsServerConfig) LoadFromEnv() error {
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := envconfig.Process(DatabaseEnvPrefix, &c.Database); err != nil {
		return fmt.Errorf("failed to process database environment variables: %w", err)
	}
	return nil
}

// Validate checks the configuration attribute to ensure they are semantically correct
func (c *SubscriptionsServerConfig) Validate() error {
	if err := c.CommonServerConfig.Validate(); err != nil {
		return err //nolint:wrapcheck
	}
	err := validation.ValidateStruct(c,
		validation.Field(&c.CertMatchMode, validation.In(auth.MatchModeExact, auth.MatchModeNormalized)),
		validation.Field(&c.AuditURL, is.URL),
		validation.Field(&c.AuditTenant, validation.Required),
		validation.Field(&c.AuditTimeout, validation.Required, validation.Min(time.Second)),
	)
	if err != nil {
		return fmt.Errorf("invalid subscriptions server configuration: %w", err)
	}
	err = validation.ValidateStruct(&c.Database,
		validation.Field(&c.Database.Host, validation.Required),
		validation.Field(&c.Database.Port, validation.Required, is.Port),
		validation.Field(&c.Database.User, validation.Required),
		validation.Field(&c.Database.Database, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("invalid database configuration: %w", err)
	}
	return nil
}

// TrustList loads the trusted client certificates
func (c *SubscriptionsServerConfig) TrustList() (auth.TrustList, error) {
	return auth.LoadTrustList(c.CertsDetails, c.CertsDetailsFile) //nolint:wrapcheck
}

// SubjectMatcher returns the configured comparison of subjects and issuers
func (c *SubscriptionsServerConfig) SubjectMatcher() (auth.SubjectMatcher, error) {
	return auth.NewSubjectMatcher(c.CertMatchMode) //nolint:wrapcheck
}

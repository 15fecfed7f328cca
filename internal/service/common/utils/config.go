/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package utils

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// OAuthConfig defines the attributes used to acquire tokens for outbound calls with the client
// credentials grant.
type OAuthConfig struct {
	TokenURL     string   `envconfig:"AUDIT_OAUTH_TOKEN_URL"`
	ClientID     string   `envconfig:"AUDIT_OAUTH_CLIENT_ID"`
	ClientSecret string   `envconfig:"AUDIT_OAUTH_CLIENT_SECRET"`
	Scopes       []string `envconfig:"AUDIT_OAUTH_SCOPES"`
}

// TLSConfig defines the attributes used to verify the servers reached by outbound calls
type TLSConfig struct {
	CABundleFile string `envconfig:"CA_BUNDLE_FILE"`
}

// OutboundRequestTimeout bounds every request of the outbound client, token requests included
const OutboundRequestTimeout = 30 * time.Second

type CommonServerConfig struct {
	// APIURL is the externally visible base URL used to build Location headers.
	APIURL string `envconfig:"API_URL" default:"http://localhost:3000"`
	// ServiceVersion is reported by the health probe and the version command.
	ServiceVersion string `envconfig:"SERVICE_VERSION" default:"dev"`
	// OAuth defines the attributes required to communicate with the OAuth server
	OAuth OAuthConfig
	TLS   TLSConfig
}

const (
	APIURLFlagName         = "api-url"
	OAuthTokenURLFlagName  = "oauth-token-url" // nolint: gosec
	OAuthClientIDFlagName  = "oauth-client-id"
	OAuthScopesFlagName    = "oauth-scopes"
	CABundleFileFlagName   = "ca-bundle-file"
	ServiceVersionFlagName = "service-version"
)

// SetCommonServerFlags creates the flag instances for the server. Flags override the values
// loaded from the environment only when they are explicitly set.
func SetCommonServerFlags(cmd *cobra.Command, config *CommonServerConfig) error {
	flags := cmd.Flags()
	flags.StringVar(
		&config.APIURL,
		APIURLFlagName,
		config.APIURL,
		"Externally visible base URL of the API",
	)
	flags.StringVar(
		&config.ServiceVersion,
		ServiceVersionFlagName,
		config.ServiceVersion,
		"Version reported by the health probe",
	)
	flags.StringVar(
		&config.OAuth.TokenURL,
		OAuthTokenURLFlagName,
		config.OAuth.TokenURL,
		"OAuth server token URL",
	)
	flags.StringVar(
		&config.OAuth.ClientID,
		OAuthClientIDFlagName,
		config.OAuth.ClientID,
		"OAuth client identifier, the secret is read from AUDIT_OAUTH_CLIENT_SECRET",
	)
	flags.StringSliceVar(
		&config.OAuth.Scopes,
		OAuthScopesFlagName,
		config.OAuth.Scopes,
		"OAuth client scopes",
	)
	flags.StringVar(
		&config.TLS.CABundleFile,
		CABundleFileFlagName,
		config.TLS.CABundleFile,
		"Custom CA certificate bundle file",
	)
	return nil
}

// LoadFromEnv loads config values from the environment
func (c *CommonServerConfig) LoadFromEnv() error {
	err := envconfig.Process("", c)
	if err != nil {
		return fmt.Errorf("failed to process environment variables: %w", err)
	}
	return nil
}

// Validate checks the configuration attribute to ensure they are semantically correct
func (c *CommonServerConfig) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.APIURL, validation.Required, is.URL),
		validation.Field(&c.ServiceVersion, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("invalid server configuration: %w", err)
	}

	oauth := &c.OAuth
	err = validation.ValidateStruct(oauth,
		validation.Field(&oauth.ClientSecret, validation.When(oauth.ClientID != "", validation.Required)),
		validation.Field(&oauth.ClientID, validation.When(oauth.ClientSecret != "" || oauth.TokenURL != "", validation.Required)),
		validation.Field(&oauth.TokenURL, validation.When(oauth.ClientID != "", validation.Required), is.URL),
	)
	if err != nil {
		return fmt.Errorf("invalid OAuth configuration: %w", err)
	}
	return nil
}

// CreateOAuthClient builds the HTTP client used for outbound calls. When a client identifier is
// configured the client acquires and refreshes tokens with the client credentials grant,
// otherwise a plain client is returned.
func (c *CommonServerConfig) CreateOAuthClient(ctx context.Context) (*http.Client, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if c.TLS.CABundleFile != "" {
		bundle, err := os.ReadFile(c.TLS.CABundleFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA bundle file '%s': %w", c.TLS.CABundleFile, err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(bundle) {
			return nil, fmt.Errorf("failed to append certificate bundle to pool")
		}
		tlsConfig.RootCAs = pool
		slog.Debug("using CA bundle", "path", c.TLS.CABundleFile)
	}

	client := &http.Client{
		Transport: &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: tlsConfig,
		},
		Timeout: OutboundRequestTimeout,
	}

	if c.OAuth.ClientID == "" {
		return client, nil
	}

	config := clientcredentials.Config{
		ClientID:     c.OAuth.ClientID,
		ClientSecret: c.OAuth.ClientSecret,
		TokenURL:     c.OAuth.TokenURL,
		Scopes:       c.OAuth.Scopes,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, client)

	slog.Info("OAuth client configured",
		"tokenURL", c.OAuth.TokenURL, "clientID", c.OAuth.ClientID, "!clientSecret", c.OAuth.ClientSecret)
	result := config.Client(ctx)
	result.Timeout = OutboundRequestTimeout
	return result, nil
}

// LoadWithFlagOverrides runs the given loader and then sets again the flags that were explicitly
// given on the command line, so that they take precedence over the environment.
func LoadWithFlagOverrides(flags *pflag.FlagSet, load func() error) error {
	scalars := map[string]string{}
	slices := map[string][]string{}
	flags.Visit(func(f *pflag.Flag) {
		if value, ok := f.Value.(pflag.SliceValue); ok {
			slices[f.Name] = value.GetSlice()
			return
		}
		scalars[f.Name] = f.Value.String()
	})

	if err := load(); err != nil {
		return err
	}

	for name, value := range scalars {
		if err := flags.Lookup(name).Value.Set(value); err != nil {
			return fmt.Errorf("failed to set flag '%s': %w", name, err)
		}
	}
	for name, values := range slices {
		if err := flags.Lookup(name).Value.(pflag.SliceValue).Replace(values); err != nil {
			return fmt.Errorf("failed to set flag '%s': %w", name, err)
		}
	}
	return nil
}

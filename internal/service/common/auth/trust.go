/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package auth

import (
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"sigs.k8s.io/yaml"
)

// TrustEntry allows the callers presenting a certificate with the given subject and issuer to act
// for the tenant.
type TrustEntry struct {
	TenantID string `json:"tenantId"`
	Subject  string `json:"subject"`
	Issuer   string `json:"issuer"`
}

func (e TrustEntry) Validate() error {
	return validation.ValidateStruct(&e, // nolint: wrapcheck
		validation.Field(&e.TenantID, validation.Required),
		validation.Field(&e.Subject, validation.Required),
		validation.Field(&e.Issuer, validation.Required),
	)
}

// TrustList is the allow list of the certificate authenticator
type TrustList []TrustEntry

// Validate checks every entry of the list
func (l TrustList) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("trust list is empty")
	}
	for i, entry := range l {
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("invalid trust entry %d: %w", i, err)
		}
	}
	return nil
}

// Find returns the first entry matching the tenant, subject and issuer. The tenant always has to
// be equal, the names are compared with the matcher.
func (l TrustList) Find(tenantID, subject, issuer string, matcher SubjectMatcher) (*TrustEntry, bool) {
	for i := range l {
		entry := &l[i]
		if entry.TenantID != tenantID {
			continue
		}
		if matcher.Match(entry.Subject, subject) && matcher.Match(entry.Issuer, issuer) {
			return entry, true
		}
	}
	return nil, false
}

// DefaultTrustList returns the development entries used when nothing is configured. The names
// are written the way the authenticator renders them so that they also match in exact mode.
func DefaultTrustList() TrustList {
	return TrustList{
		{
			TenantID: "123",
			Subject:  "CN=ValidC",
			Issuer:   "CN=Trust",
		},
		{
			TenantID: "1234",
			Subject:  "CN=ValidClient,O=Company",
			Issuer:   "CN=TrustedCA,O=CertificateAuthority",
		},
		{
			TenantID: "sap.bdcfos.testing::cx-commerce-ccv2",
			Subject:  "CN=ValidClient,O=Company",
			Issuer:   "CN=TrustedCA,O=CertificateAuthority",
		},
	}
}

// ParseTrustList parses a JSON or YAML list of entries and validates it.
func ParseTrustList(data []byte) (TrustList, error) {
	var list TrustList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse trust list: %w", err)
	}
	if err := list.Validate(); err != nil {
		return nil, err
	}
	return list, nil
}

// LoadTrustList loads the trust list from the file, or else from the inline value, or else
// returns the default entries.
func LoadTrustList(inline, file string) (TrustList, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read trust list file '%s': %w", file, err)
		}
		return ParseTrustList(data)
	}
	if strings.TrimSpace(inline) != "" {
		return ParseTrustList([]byte(inline))
	}
	return DefaultTrustList(), nil
}

/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package auth

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"k8s.io/apiserver/pkg/authentication/authenticator"
)

// Headers set by the ingress proxy in front of the service
const (
	ClientCertHeader = "x-forwarded-client-cert"
	TenantHeader     = "bdcfos-producer-tenantid"
)

const certSegmentPrefix = `Cert="`

// shortNames maps the attribute types of a distinguished name to the names used in the trust list.
var shortNames = map[string]string{
	"2.5.4.3":                    "CN",
	"2.5.4.6":                    "C",
	"2.5.4.7":                    "L",
	"2.5.4.8":                    "ST",
	"2.5.4.10":                   "O",
	"2.5.4.11":                   "OU",
	"1.2.840.113549.1.9.1":       "E",
	"2.5.4.9":                    "STREET",
	"2.5.4.5":                    "SERIALNUMBER",
	"0.9.2342.19200300.100.1.25": "DC",
	"0.9.2342.19200300.100.1.1":  "UID",
}

// Attribute is one type and value pair of a distinguished name
type Attribute struct {
	ShortName string
	Value     string
}

// shortName returns the short name of the attribute type, or its dotted form when unknown.
func shortName(oid asn1.ObjectIdentifier) string {
	dotted := oid.String()
	if name, ok := shortNames[dotted]; ok {
		return name
	}
	return dotted
}

// NameAttributes returns the attributes of the name in certificate order.
func NameAttributes(name pkix.Name) []Attribute {
	attributes := make([]Attribute, 0, len(name.Names))
	for _, atv := range name.Names {
		attributes = append(attributes, Attribute{
			ShortName: shortName(atv.Type),
			Value:     fmt.Sprint(atv.Value),
		})
	}
	return attributes
}

// FormatAttributes renders the attributes as comma separated shortName=value pairs.
func FormatAttributes(attributes []Attribute) string {
	parts := make([]string, 0, len(attributes))
	for _, attribute := range attributes {
		parts = append(parts, attribute.ShortName+"="+attribute.Value)
	}
	return strings.Join(parts, ",")
}

// ParseForwardedCertificate extracts the client certificate from the value of the forwarded
// client certificate header. The value is a semicolon delimited list of attributes, one of which
// is the URL encoded PEM certificate.
func ParseForwardedCertificate(header string) (*x509.Certificate, error) {
	var encoded string
	found := false
	for _, segment := range strings.Split(header, ";") {
		segment = strings.TrimSpace(segment)
		if strings.HasPrefix(segment, certSegmentPrefix) {
			encoded = strings.TrimSuffix(strings.TrimPrefix(segment, certSegmentPrefix), `"`)
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("certificate part not found in header")
	}

	decoded, err := url.PathUnescape(encoded)
	if err != nil {
		return nil, fmt.Errorf("error decoding client certificate: %w", err)
	}

	block, _ := pem.Decode([]byte(decoded))
	if block == nil {
		return nil, fmt.Errorf("client certificate is not PEM encoded")
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("error parsing client certificate: %w", err)
	}
	return cert, nil
}

// CertificateAuthenticator authenticates requests with the client certificate forwarded by the
// ingress proxy. The subject and issuer of the certificate, together with the declared tenant,
// must match an entry of the trust list.
type CertificateAuthenticator struct {
	trust   TrustList
	matcher SubjectMatcher
}

// NewCertificateAuthenticator creates an authenticator over an immutable trust list
func NewCertificateAuthenticator(trust TrustList, matcher SubjectMatcher) *CertificateAuthenticator {
	if matcher == nil {
		matcher = ExactMatcher{}
	}
	return &CertificateAuthenticator{
		trust:   append(TrustList(nil), trust...),
		matcher: matcher,
	}
}

// AuthenticateRequest implements authenticator.Request. Parse failures are reported as an
// unauthenticated request, never as an error.
func (a *CertificateAuthenticator) AuthenticateRequest(req *http.Request) (*authenticator.Response, bool, error) {
	header := req.Header.Get(ClientCertHeader)
	if header == "" {
		slog.DebugContext(req.Context(), "No client certificate forwarded")
		return nil, false, nil
	}

	cert, err := ParseForwardedCertificate(header)
	if err != nil {
		slog.DebugContext(req.Context(), "Invalid client certificate", "error", err)
		return nil, false, nil
	}

	// Remove it so that it is not accidentally referenced or leaked elsewhere
	req.Header.Del(ClientCertHeader)

	subjectAttributes := NameAttributes(cert.Subject)
	identity := &Identity{
		TenantID:          req.Header.Get(TenantHeader),
		Subject:           FormatAttributes(subjectAttributes),
		Issuer:            FormatAttributes(NameAttributes(cert.Issuer)),
		SubjectAttributes: subjectAttributes,
	}

	if _, found := a.trust.Find(identity.TenantID, identity.Subject, identity.Issuer, a.matcher); !found {
		slog.DebugContext(req.Context(), "Client certificate not trusted",
			"tenant", identity.TenantID, "subject", identity.Subject, "issuer", identity.Issuer,
			"matcher", a.matcher.Name())
		return nil, false, nil
	}

	slog.DebugContext(req.Context(), "Client certificate trusted",
		"tenant", identity.TenantID, "subject", identity.Subject)
	return &authenticator.Response{User: identity}, true, nil
}

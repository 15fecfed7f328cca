/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package auth

import (
	"context"

	"k8s.io/apiserver/pkg/authentication/user"
	"k8s.io/apiserver/pkg/endpoints/request"
)

// Keys of the extra attributes of an Identity
const (
	TenantExtraKey = "dsapi.tenant"
	IssuerExtraKey = "dsapi.issuer"
)

// Identity is the authenticated caller. It implements user.Info so that it travels in the request
// context like any other authenticated user.
type Identity struct {
	TenantID          string
	Issuer            string
	Subject           string
	SubjectAttributes []Attribute
}

var _ user.Info = (*Identity)(nil)

func (i *Identity) GetName() string {
	return i.Subject
}

func (i *Identity) GetUID() string {
	return ""
}

func (i *Identity) GetGroups() []string {
	return []string{user.AllAuthenticated}
}

func (i *Identity) GetExtra() map[string][]string {
	return map[string][]string{
		TenantExtraKey: {i.TenantID},
		IssuerExtraKey: {i.Issuer},
	}
}

// Attribute returns the first value of the subject attribute with the given short name.
func (i *Identity) Attribute(shortName string) (string, bool) {
	for _, attribute := range i.SubjectAttributes {
		if attribute.ShortName == shortName {
			return attribute.Value, true
		}
	}
	return "", false
}

// IdentityFrom returns the identity bound to the context by the authenticator, if any.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	info, ok := request.UserFrom(ctx)
	if !ok {
		return nil, false
	}
	identity, ok := info.(*Identity)
	return identity, ok
}

// WithIdentity binds the identity to the context
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return request.WithUser(ctx, identity)
}

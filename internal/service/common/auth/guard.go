/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package auth

import (
	"context"
	"log/slog"
	"strings"

	typederrors "github.com/openshift-kni/oran-dsapi/internal/typed-errors"
)

// lastSegment returns the text after the final '/'
func lastSegment(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}

// ProducerTenant returns the tenant owning a subscription, the last segment of its producer path.
func ProducerTenant(producer string) string {
	return lastSegment(producer)
}

// SubscriberTenant returns the tenant segment of a subscriber path.
func SubscriberTenant(subscriber string) string {
	return lastSegment(subscriber)
}

// Authorize checks that the caller bound to the context acts for the tenant owning the producer.
// The tenant is returned on success.
func Authorize(ctx context.Context, producer string) (string, error) {
	identity, ok := IdentityFrom(ctx)
	if !ok {
		return "", typederrors.NewAuthenticationError(nil, "no authenticated identity")
	}

	tenant := ProducerTenant(producer)
	if identity.TenantID != tenant {
		slog.DebugContext(ctx, "Tenant mismatch", "caller", identity.TenantID, "producer", tenant)
		return "", typederrors.NewAuthorizationError("tenant '%s' may not access resources of tenant '%s'",
			identity.TenantID, tenant)
	}
	return tenant, nil
}

/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package auth

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	typederrors "github.com/openshift-kni/oran-dsapi/internal/typed-errors"
)

var _ = Describe("Tenant guard", func() {
	It("derives tenants from the last path segment", func() {
		Expect(ProducerTenant("/eu10/sap.bdcfos/123")).To(Equal("123"))
		Expect(SubscriberTenant("/eu10/sap.bdcfos/abc")).To(Equal("abc"))
		Expect(ProducerTenant("plain")).To(Equal("plain"))
		Expect(ProducerTenant("/eu10/ns/")).To(Equal(""))
	})

	It("authorizes the owning tenant", func() {
		ctx := WithIdentity(context.Background(), &Identity{TenantID: "123"})
		tenant, err := Authorize(ctx, "/eu10/sap.bdcfos/123")
		Expect(err).NotTo(HaveOccurred())
		Expect(tenant).To(Equal("123"))
	})

	It("rejects another tenant", func() {
		ctx := WithIdentity(context.Background(), &Identity{TenantID: "123"})
		_, err := Authorize(ctx, "/eu10/sap.bdcfos/1234")
		Expect(typederrors.IsAuthorizationError(err)).To(BeTrue())
	})

	It("rejects a context without identity", func() {
		_, err := Authorize(context.Background(), "/eu10/sap.bdcfos/123")
		Expect(typederrors.IsAuthenticationError(err)).To(BeTrue())
	})
})

/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package api_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/openshift-kni/oran-dsapi/internal/service/common/auth"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/api"
)

var _ = Describe("SubscriptionsServerConfig", func() {
	It("loads the defaults", func() {
		config := &api.SubscriptionsServerConfig{}
		Expect(config.LoadFromEnv()).To(Succeed())
		Expect(config.CertMatchMode).To(Equal(auth.MatchModeExact))
		Expect(config.AuditTenant).To(Equal("$PROVIDER"))
		Expect(config.AuditTimeout).To(Equal(10 * time.Second))
		Expect(config.Database.Host).To(Equal("localhost"))
		Expect(config.Database.Port).To(Equal("5432"))
		Expect(config.Validate()).To(Succeed())
	})

	It("prefers the prefixed database variables", func() {
		GinkgoT().Setenv("DB_HOST", "shared.example.com")
		GinkgoT().Setenv("DB_PORT", "6543")
		GinkgoT().Setenv("DSAPI_DB_HOST", "dsapi.example.com")
		config := &api.SubscriptionsServerConfig{}
		Expect(config.LoadFromEnv()).To(Succeed())
		Expect(config.Database.Host).To(Equal("dsapi.example.com"))
		Expect(config.Database.Port).To(Equal("6543"))
	})

	It("reads the audit settings", func() {
		GinkgoT().Setenv("AUDIT_URL", "https://audit.example.com")
		GinkgoT().Setenv("AUDIT_IGNORED_FIELDS", "destinationPath,schedule")
		config := &api.SubscriptionsServerConfig{}
		Expect(config.LoadFromEnv()).To(Succeed())
		Expect(config.AuditURL).To(Equal("https://audit.example.com"))
		Expect(config.AuditIgnoredFields).To(ConsistOf("destinationPath", "schedule"))
	})

	It("rejects an audit timeout below a second", func() {
		GinkgoT().Setenv("AUDIT_TIMEOUT", "10ms")
		config := &api.SubscriptionsServerConfig{}
		Expect(config.LoadFromEnv()).To(Succeed())
		Expect(config.AuditTimeout).To(Equal(10 * time.Millisecond))
		Expect(config.Validate()).To(MatchError(ContainSubstring("invalid subscriptions server configuration")))
	})

	It("rejects an unknown match mode", func() {
		GinkgoT().Setenv("CERT_MATCH_MODE", "fuzzy")
		config := &api.SubscriptionsServerConfig{}
		Expect(config.LoadFromEnv()).To(Succeed())
		Expect(config.Validate()).To(MatchError(ContainSubstring("invalid subscriptions server configuration")))
	})

	It("rejects an invalid database port", func() {
		GinkgoT().Setenv("DSAPI_DB_PORT", "port")
		config := &api.SubscriptionsServerConfig{}
		Expect(config.LoadFromEnv()).To(Succeed())
		Expect(config.Validate()).To(MatchError(ContainSubstring("invalid database configuration")))
	})

	It("registers the flags", func() {
		config := &api.SubscriptionsServerConfig{}
		cmd := &cobra.Command{}
		Expect(api.SetServerFlags(cmd, config)).To(Succeed())
		Expect(cmd.Flags().Parse([]string{
			"--cert-match-mode", auth.MatchModeNormalized,
			"--audit-ignored-fields", "schedule",
		})).To(Succeed())
		Expect(config.CertMatchMode).To(Equal(auth.MatchModeNormalized))
		Expect(config.AuditIgnoredFields).To(Equal([]string{"schedule"}))
		Expect(cmd.Flags().Lookup("api-listener-address")).NotTo(BeNil())
	})

	It("builds the configured matcher", func() {
		config := &api.SubscriptionsServerConfig{CertMatchMode: auth.MatchModeNormalized}
		matcher, err := config.SubjectMatcher()
		Expect(err).NotTo(HaveOccurred())
		Expect(matcher.Name()).To(Equal(auth.MatchModeNormalized))
	})

	It("falls back to the default trust list", func() {
		config := &api.SubscriptionsServerConfig{}
		trust, err := config.TrustList()
		Expect(err).NotTo(HaveOccurred())
		Expect(trust).To(Equal(auth.DefaultTrustList()))
	})
})

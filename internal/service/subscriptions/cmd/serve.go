/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/openshift-kni/oran-dsapi/internal/exit"
	svcutils "github.com/openshift-kni/oran-dsapi/internal/service/common/utils"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/api"
)

// config defines the configuration attributes for the subscriptions server
var config api.SubscriptionsServerConfig

// subscriptionsServe represents the start command for the subscriptions server
var subscriptionsServe = &cobra.Command{
	Use:   "serve",
	Short: "Start the data subscriptions server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := svcutils.LoadWithFlagOverrides(cmd.Flags(), config.LoadFromEnv); err != nil {
			slog.Error("failed to load configuration", "error", err)
			return exit.Error(1)
		}
		if err := config.Validate(); err != nil {
			slog.Error("failed to validate configuration", "error", err)
			return exit.Error(1)
		}
		if err := subscriptions.Serve(cmd.Context(), &config, cmd.Flags()); err != nil {
			slog.Error("failed to start subscriptions server", "error", err)
			return exit.Error(1)
		}
		return nil
	},
}

func init() {
	if err := api.SetServerFlags(subscriptionsServe, &config); err != nil {
		panic(fmt.Sprintf("failed to set server flags: %v", err))
	}
	subscriptionsRootCmd.AddCommand(subscriptionsServe)
}

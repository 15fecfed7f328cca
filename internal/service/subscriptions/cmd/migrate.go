/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/openshift-kni/oran-dsapi/internal/exit"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/api"
)

const downFlagName = "down"

// subscriptionsMigrate represents the migrate command
var subscriptionsMigrate = &cobra.Command{
	Use:   "migrate",
	Short: "Run migrations all the way up",
	Long:  `This will run from a job before the server starts.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		migrationConfig := api.SubscriptionsServerConfig{}
		if err := migrationConfig.LoadFromEnv(); err != nil {
			slog.Error("failed to load configuration", "error", err)
			return exit.Error(1)
		}
		down, _ := cmd.Flags().GetBool(downFlagName)
		if err := subscriptions.StartSubscriptionsMigration(cmd.Context(), &migrationConfig, down); err != nil {
			slog.Error("failed to do migration", "error", err)
			return exit.Error(1)
		}
		return nil
	},
}

func init() {
	subscriptionsMigrate.Flags().Bool(downFlagName, false, "Revert all the migrations instead.")
	subscriptionsRootCmd.AddCommand(subscriptionsMigrate)
}

/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// subscriptionsRootCmd represents the root command for working with the subscriptions server
var subscriptionsRootCmd = &cobra.Command{
	Use:   "subscriptions-server",
	Short: "All things needed for the data subscriptions server",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to do. Use sub-commands instead.")
	},
}

func GetSubscriptionsRootCmd() *cobra.Command {
	return subscriptionsRootCmd
}

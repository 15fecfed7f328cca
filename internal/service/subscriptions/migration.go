/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package subscriptions

import (
	"context"
	"fmt"

	"github.com/openshift-kni/oran-dsapi/internal/service/common/db"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/api"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/internal/db/migrations"
)

// StartSubscriptionsMigration initiates the migration process for the subscriptions database. All
// the migrations are reverted instead when down is set.
func StartSubscriptionsMigration(ctx context.Context, config *api.SubscriptionsServerConfig, down bool) error {
	if err := ApplyServiceBindings(config); err != nil {
		return err
	}

	driver, err := migrations.Source()
	if err != nil {
		return fmt.Errorf("failed to create migrations source: %w", err)
	}

	migrate := db.StartMigration
	if down {
		migrate = db.RevertMigration
	}
	if err := migrate(ctx, config.Database, driver); err != nil {
		return fmt.Errorf("failed to start migrations: %w", err)
	}
	return nil
}

/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"

	svcutils "github.com/openshift-kni/oran-dsapi/internal/service/common/utils"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/internal/db/models"
	typederrors "github.com/openshift-kni/oran-dsapi/internal/typed-errors"
)

// ConflictMessage is the message of the error returned for a duplicate subscription
const ConflictMessage = "Data subscription already exists"

// advisoryLockSQL serializes the creations of the same subscription for the rest of the
// transaction.
const advisoryLockSQL = "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))"

// Pinger is implemented by connection pools able to check the database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// DB is the database handle used by the repository
type DB interface {
	svcutils.DBQuery
	Pinger
}

type DataSubscriptionsRepository struct {
	Db DB
}

// Compile time check for interface implementation
var _ RepositoryInterface = (*DataSubscriptionsRepository)(nil)

// identityKey returns the advisory lock key of the subscriber, producer and data source triple
func identityKey(record models.DataSubscription) string {
	return strings.Join([]string{record.Subscriber, record.Producer, record.DataSourceID}, "\x00")
}

// CreateDataSubscription inserts the record in a transaction holding the advisory lock of its
// identity. The unique index covers writers that do not take the lock.
func (r *DataSubscriptionsRepository) CreateDataSubscription(ctx context.Context, record models.DataSubscription) (*models.DataSubscription, error) {
	var created *models.DataSubscription
	err := svcutils.WithTransaction(ctx, r.Db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, advisoryLockSQL, identityKey(record)); err != nil {
			return fmt.Errorf("failed to acquire subscription lock: %w", err)
		}

		existing, err := svcutils.Search[models.DataSubscription](ctx, tx,
			[]any{psql.Quote(models.ColumnID)},
			sm.Where(psql.Quote(models.ColumnSubscriber).EQ(psql.Arg(record.Subscriber))),
			sm.Where(psql.Quote(models.ColumnProducer).EQ(psql.Arg(record.Producer))),
			sm.Where(psql.Quote(models.ColumnDataSourceID).EQ(psql.Arg(record.DataSourceID))),
			sm.Limit(1),
		)
		if err != nil {
			return fmt.Errorf("failed to look up existing subscription: %w", err)
		}
		if len(existing) > 0 {
			slog.DebugContext(ctx, "Subscription already exists", "id", existing[0].ID)
			return typederrors.NewConflictError(nil, ConflictMessage)
		}

		created, err = svcutils.Create(ctx, tx, record,
			models.ColumnID, models.ColumnVersion, models.ColumnCreatedAt, models.ColumnUpdatedAt)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, typederrors.NewConflictError(err, ConflictMessage)
		}
		return nil, err
	}

	slog.InfoContext(ctx, "Subscription created", "id", created.ID)
	return created, nil
}

// GetDataSubscription returns the record with the given id or nil
func (r *DataSubscriptionsRepository) GetDataSubscription(ctx context.Context, id uuid.UUID) (*models.DataSubscription, error) {
	return svcutils.Find[models.DataSubscription](ctx, r.Db, id, nil)
}

// UpdateDataSubscription applies the patch and increments the version in a single statement that
// only matches the expected version.
func (r *DataSubscriptionsRepository) UpdateDataSubscription(ctx context.Context, id uuid.UUID, version int, patch models.DataSubscriptionPatch) (bool, error) {
	var mods []bob.Mod[*dialect.UpdateQuery]
	if patch.Schedule != nil {
		mods = append(mods, um.SetCol(models.ColumnSchedule).ToArg(*patch.Schedule))
	}
	if patch.BeginWatermark != nil {
		mods = append(mods, um.SetCol(models.ColumnBeginWatermark).ToArg(*patch.BeginWatermark))
	}
	if patch.UpperWatermark != nil {
		mods = append(mods, um.SetCol(models.ColumnUpperWatermark).ToArg(*patch.UpperWatermark))
	}
	if patch.DestinationPath != nil {
		mods = append(mods, um.SetCol(models.ColumnDestinationPath).ToArg(*patch.DestinationPath))
	}
	if patch.Active != nil {
		mods = append(mods, um.SetCol(models.ColumnActive).ToArg(*patch.Active))
	}
	mods = append(mods,
		um.Set(psql.Raw(fmt.Sprintf("%s = %s + 1", models.ColumnVersion, models.ColumnVersion))),
		um.Set(psql.Raw(fmt.Sprintf("%s = now()", models.ColumnUpdatedAt))),
		um.Where(psql.Quote(models.ColumnID).EQ(psql.Arg(id))),
		um.Where(psql.Quote(models.ColumnVersion).EQ(psql.Arg(version))),
	)

	count, err := svcutils.UpdateWhere[models.DataSubscription](ctx, r.Db, mods...)
	if err != nil {
		return false, err
	}
	return count == 1, nil
}

// DeleteDataSubscription deletes the record regardless of its version
func (r *DataSubscriptionsRepository) DeleteDataSubscription(ctx context.Context, id uuid.UUID) (bool, error) {
	count, err := svcutils.Delete[models.DataSubscription](ctx, r.Db, id)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListDataSubscriptions returns the id and producer of the subscriptions of the subscriber,
// optionally restricted to a producer, in creation order.
func (r *DataSubscriptionsRepository) ListDataSubscriptions(ctx context.Context, filter ListFilter) ([]models.DataSubscription, error) {
	mods := []bob.Mod[*dialect.SelectQuery]{
		sm.Where(psql.Quote(models.ColumnSubscriber).EQ(psql.Arg(filter.Subscriber))),
	}
	if filter.Producer != nil {
		mods = append(mods, sm.Where(psql.Quote(models.ColumnProducer).EQ(psql.Arg(*filter.Producer))))
	}
	mods = append(mods,
		sm.OrderBy(psql.Quote(models.ColumnCreatedAt)),
		sm.OrderBy(psql.Quote(models.ColumnID)),
		sm.Limit(filter.Top),
		sm.Offset(filter.Skip),
	)

	return svcutils.Search[models.DataSubscription](ctx, r.Db,
		[]any{psql.Quote(models.ColumnID), psql.Quote(models.ColumnProducer)}, mods...)
}

// Ping checks the database is reachable
func (r *DataSubscriptionsRepository) Ping(ctx context.Context) error {
	if err := r.Db.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

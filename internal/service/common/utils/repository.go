/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package utils

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"

	"github.com/openshift-kni/oran-dsapi/internal/service/common/db"
)

// DBQuery is the subset of the pgx API used by the helpers. It is satisfied by *pgxpool.Pool,
// pgx.Tx and the pgxmock pool so the same helpers run inside or outside a transaction.
type DBQuery interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// WithTransaction runs fn inside a transaction. The transaction is committed when fn succeeds and
// rolled back when it fails; the error of fn is returned unchanged.
func WithTransaction(ctx context.Context, q DBQuery, fn func(tx pgx.Tx) error) error {
	tx, err := q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			slog.WarnContext(ctx, "Failed to roll back transaction", "error", rollbackErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Find retrieves a specific tuple from the database table specified. If no record is found nil is
// returned.
func Find[T db.Model](ctx context.Context, q DBQuery, id any, columns []any) (*T, error) {
	var record T
	if columns == nil {
		columns = GetAllDBTagsFromStruct(record).Columns()
	}

	sql, args, err := psql.Select(
		sm.Columns(columns...),
		sm.From(record.TableName()),
		sm.Where(psql.Quote(record.PrimaryKey()).EQ(psql.Arg(id))),
	).Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to call database: %w", err)
	}
	record, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			slog.DebugContext(ctx, "No entity found", "table", record.TableName(), "id", id)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to call database: %w", err)
	}

	return &record, nil
}

// Search retrieves the tuples matching the given query mods. The caller supplies the where,
// order and window clauses; an empty result is not an error.
func Search[T db.Model](ctx context.Context, q DBQuery, columns []any, mods ...bob.Mod[*dialect.SelectQuery]) ([]T, error) {
	var record T
	if columns == nil {
		columns = GetAllDBTagsFromStruct(record).Columns()
	}

	all := append([]bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(record.TableName()),
	}, mods...)

	sql, args, err := psql.Select(all...).Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to call database: %w", err)
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return nil, fmt.Errorf("failed to call database: %w", err)
	}

	slog.DebugContext(ctx, "Records found", "table", record.TableName(), "count", len(records))
	return records, nil
}

// Create inserts the record and returns it as stored, including the values defaulted by the
// database. Nil pointer fields and the excluded columns are left to their column defaults.
func Create[T db.Model](ctx context.Context, q DBQuery, record T, exclude ...string) (*T, error) {
	tags := GetNonNilDBTagsFromStruct(record).Without(exclude...)
	columns, values := GetColumnsAndValues(record, tags)

	sql, args, err := psql.Insert(
		im.Into(record.TableName(), columns...),
		im.Values(psql.Arg(values...)),
		im.Returning(GetAllDBTagsFromStruct(record).Columns()...),
	).Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create insert expression: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to call database: %w", err)
	}
	created, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("failed to insert into '%s': %w", record.TableName(), err)
	}

	return &created, nil
}

// UpdateWhere applies the set clauses to the tuples matched by the where clause and returns the
// number of rows affected.
func UpdateWhere[T db.Model](ctx context.Context, q DBQuery, mods ...bob.Mod[*dialect.UpdateQuery]) (int64, error) {
	var record T
	all := append([]bob.Mod[*dialect.UpdateQuery]{um.Table(record.TableName())}, mods...)

	sql, args, err := psql.Update(all...).Build(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to build update query for '%s': %w", record.TableName(), err)
	}

	result, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update '%s': %w", record.TableName(), err)
	}

	return result.RowsAffected(), nil
}

// Delete deletes a specific tuple from the database table specified. The number of rows affected
// is returned so that the caller can detect a missing record.
func Delete[T db.Model](ctx context.Context, q DBQuery, id any) (int64, error) {
	var record T
	sql, args, err := psql.Delete(
		dm.From(record.TableName()),
		dm.Where(psql.Quote(record.PrimaryKey()).EQ(psql.Arg(id))),
	).Build(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to build delete query for '%s/%v': %w", record.TableName(), id, err)
	}

	result, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete '%s/%v': %w", record.TableName(), id, err)
	}

	return result.RowsAffected(), nil
}

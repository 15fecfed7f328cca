/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source"
)

// MigrationsTable table created by migration lib to track state of migration
const MigrationsTable = "schema_migrations"

type MigrationHandler struct {
	Migrate *migrate.Migrate
}

// Printf is the implementation of migrate lib's logger interface
func (h *MigrationHandler) Printf(format string, v ...interface{}) {
	slog.Debug(fmt.Sprintf(format, v...))
}

// Verbose is the implementation of migrate lib's logger interface
func (h *MigrationHandler) Verbose() bool {
	return true
}

// NewMigrationHandler configures a migration instance reading from the given source.
func NewMigrationHandler(pgc PgConfig, src source.Driver) (*MigrationHandler, error) {
	// https://github.com/golang-migrate/migrate/tree/master/database/pgx/v5
	connStr := pgc.URL("pgx5") + "&x-migrations-table=" + MigrationsTable

	m, err := migrate.NewWithSourceInstance("iofs", src, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	h := &MigrationHandler{
		Migrate: m,
	}
	m.Log = h

	return h, nil
}

// StartMigration runs all the pending up migrations. Cancelling the context asks the migration to
// stop gracefully after the current step.
func StartMigration(ctx context.Context, pgc PgConfig, src source.Driver) error {
	return runMigration(ctx, pgc, src, (*MigrationHandler).Up)
}

// RevertMigration reverts all the applied migrations.
func RevertMigration(ctx context.Context, pgc PgConfig, src source.Driver) error {
	return runMigration(ctx, pgc, src, (*MigrationHandler).Down)
}

func runMigration(ctx context.Context, pgc PgConfig, src source.Driver, step func(*MigrationHandler) error) error {
	h, err := NewMigrationHandler(pgc, src)
	if err != nil {
		return fmt.Errorf("failed to create migrations handler: %w", err)
	}
	defer h.close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			slog.Info("Received shutdown signal, stopping migration gracefully")
			h.Migrate.GracefulStop <- true
		case <-done:
		}
	}()

	if err := step(h); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("Migrations completed successfully")
	return nil
}

// Up applies all the pending migrations. Having nothing to apply isn't an error.
func (h *MigrationHandler) Up() error {
	defer timer("Up")()

	if err := h.Migrate.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed up: %w", err)
	}
	return nil
}

// Down reverts all the applied migrations.
func (h *MigrationHandler) Down() error {
	defer timer("Down")()

	if err := h.Migrate.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed down: %w", err)
	}
	return nil
}

func (h *MigrationHandler) close() {
	srcErr, dbErr := h.Migrate.Close()
	if srcErr != nil || dbErr != nil {
		slog.Warn("Failed to close migration handler", "source", srcErr, "database", dbErr)
	}
}

func timer(name string) func() {
	start := time.Now()
	return func() {
		slog.Debug(fmt.Sprintf("%s took %s", name, time.Since(start)))
	}
}

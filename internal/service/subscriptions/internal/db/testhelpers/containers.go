/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package testhelpers

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/openshift-kni/oran-dsapi/internal/service/common/db"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/internal/db/migrations"
)

const (
	postgresImage    = "postgres:16-alpine"
	postgresDatabase = "dsapi"
	postgresUser     = "dsapi"
	postgresPassword = "dsapi"
)

// PostgresContainer is a disposable database with the subscriptions schema applied
type PostgresContainer struct {
	container *postgres.PostgresContainer
	Config    db.PgConfig
}

// StartPostgres runs a Postgres container and migrates it to the latest schema version.
func StartPostgres(ctx context.Context) (*PostgresContainer, error) {
	container, err := postgres.Run(ctx,
		postgresImage,
		postgres.WithDatabase(postgresDatabase),
		postgres.WithUsername(postgresUser),
		postgres.WithPassword(postgresPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	result := &PostgresContainer{container: container}
	host, err := container.Host(ctx)
	if err != nil {
		_ = result.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = result.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}
	result.Config = db.PgConfig{
		Host:     host,
		Port:     port.Port(),
		User:     postgresUser,
		Password: postgresPassword,
		Database: postgresDatabase,
		SSLMode:  "disable",
		MaxConns: 4,
	}

	src, err := migrations.Source()
	if err != nil {
		_ = result.Terminate(ctx)
		return nil, err
	}
	if err := db.StartMigration(ctx, result.Config, src); err != nil {
		_ = result.Terminate(ctx)
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}
	return result, nil
}

// Terminate stops and removes the container
func (c *PostgresContainer) Terminate(ctx context.Context) error {
	if err := c.container.Terminate(ctx); err != nil {
		return fmt.Errorf("failed to terminate postgres container: %w", err)
	}
	return nil
}

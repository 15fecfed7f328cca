/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package db

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgConfig contains the connection details of the Postgres database. The fields can be populated
// from the environment with envconfig using the prefix chosen by the service.
type PgConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"dsapi"`
	Password string `envconfig:"DB_PASSWORD"`
	Database string `envconfig:"DB_NAME" default:"dsapi"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	// SSLRootCert is the CA bundle used to verify the server when SSLMode is verify-ca or verify-full.
	SSLRootCert string `envconfig:"DB_SSLROOTCERT"`
	MaxConns    int32  `envconfig:"DB_MAX_CONNS" default:"10"`
}

// URL returns the connection URL using the given scheme. The pgx pool uses `postgres` and the
// migration driver uses `pgx5`.
func (c PgConfig) URL(scheme string) string {
	query := url.Values{}
	if c.SSLMode != "" {
		query.Set("sslmode", c.SSLMode)
	}
	if c.SSLRootCert != "" {
		query.Set("sslrootcert", c.SSLRootCert)
	}
	query.Set("connect_timeout", "10")
	u := url.URL{
		Scheme:   scheme,
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: query.Encode(),
	}
	return u.String()
}

// NewPgxPool get a concurrency safe pool of connection
func NewPgxPool(ctx context.Context, cfg PgConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL("postgres"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.InfoContext(ctx, "Database connection pool established",
		"host", cfg.Host, "port", cfg.Port, "database", cfg.Database, "user", cfg.User, "!password", cfg.Password)
	return pool, nil
}

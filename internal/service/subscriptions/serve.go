/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/openshift-kni/oran-dsapi/internal/exit"
	"github.com/openshift-kni/oran-dsapi/internal/metrics"
	"github.com/openshift-kni/oran-dsapi/internal/network"
	"github.com/openshift-kni/oran-dsapi/internal/openapi"
	"github.com/openshift-kni/oran-dsapi/internal/service/common/auth"
	"github.com/openshift-kni/oran-dsapi/internal/service/common/db"
	svcutils "github.com/openshift-kni/oran-dsapi/internal/service/common/utils"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/api"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/internal/audit"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/internal/db/repo"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/internal/store"
)

// Subscriptions server config values
const (
	readTimeout  = 5 * time.Second
	writeTimeout = 10 * time.Second
	idleTimeout  = 120 * time.Second

	metricsSubsystem = "inbound"
)

// ApplyServiceBindings overrides the database and audit log settings with the platform service
// bindings, when present.
func ApplyServiceBindings(config *api.SubscriptionsServerConfig) error {
	services, err := svcutils.LoadVCAPServices()
	if err != nil {
		return fmt.Errorf("failed to load service bindings: %w", err)
	}
	applied, err := services.ApplyPostgres(&config.Database)
	if err != nil {
		return fmt.Errorf("failed to apply database binding: %w", err)
	}
	if applied {
		slog.Info("Using bound database", "host", config.Database.Host, "database", config.Database.Database)
	}
	if services.ApplyAuditLog(&config.AuditURL, &config.OAuth) {
		slog.Info("Using bound audit log service", "url", config.AuditURL)
	}
	return nil
}

// newAuditSink returns the sink of the audit events. The OAuth client is created once here and
// shared by every submission.
func newAuditSink(ctx context.Context, config *api.SubscriptionsServerConfig, logger *slog.Logger) (audit.Sink, error) {
	if config.AuditURL == "" {
		logger.WarnContext(ctx, "Audit log service not configured, audit events are written to the log")
		return audit.NewLogSink(logger), nil
	}
	client, err := config.CreateOAuthClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit log client: %w", err)
	}
	return audit.NewHTTPSink(client, config.AuditURL), nil
}

// Serve starts the subscriptions server and blocks until an exit signal is received or one of
// the listeners fails.
func Serve(ctx context.Context, config *api.SubscriptionsServerConfig, flags *pflag.FlagSet) error {
	logger := slog.Default()
	logger.InfoContext(ctx, "Starting subscriptions server", "version", config.ServiceVersion)

	if err := ApplyServiceBindings(config); err != nil {
		return err
	}

	swagger, err := api.GetSwagger()
	if err != nil {
		return fmt.Errorf("failed to get swagger: %w", err)
	}

	trust, err := config.TrustList()
	if err != nil {
		return fmt.Errorf("failed to load trust list: %w", err)
	}
	if err := trust.Validate(); err != nil {
		return fmt.Errorf("invalid trust list: %w", err)
	}
	matcher, err := config.SubjectMatcher()
	if err != nil {
		return fmt.Errorf("failed to create subject matcher: %w", err)
	}
	logger.InfoContext(ctx, "Client certificates", "trusted", len(trust), "matcher", matcher.Name())

	// Init DB client
	pool, err := db.NewPgxPool(ctx, config.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to DB: %w", err)
	}
	defer func() {
		logger.Info("Closing DB connection")
		pool.Close()
	}()
	repository := &repo.DataSubscriptionsRepository{Db: pool}
	subscriptionStore := store.NewStore(repository)

	sink, err := newAuditSink(ctx, config, logger)
	if err != nil {
		return err
	}
	recorder, err := audit.NewRecorder().
		SetLogger(logger).
		SetSink(sink).
		SetTenant(config.AuditTenant).
		SetIgnoredFields(config.AuditIgnoredFields...).
		SetSubmitTimeout(config.AuditTimeout).
		SetRegisterer(prometheus.DefaultRegisterer).
		Build()
	if err != nil {
		return fmt.Errorf("failed to create audit recorder: %w", err)
	}

	document, err := openapi.NewHandler().
		SetLogger(logger).
		SetDocument(swagger).
		Build()
	if err != nil {
		return fmt.Errorf("failed to create OpenAPI handler: %w", err)
	}

	router := api.NewRouter(api.RouterOptions{
		Server:        &api.SubscriptionsServer{Config: config, Store: subscriptionStore},
		Health:        &api.HealthServer{Database: subscriptionStore, Version: config.ServiceVersion},
		Authenticator: auth.NewCertificateAuthenticator(trust, matcher),
		Recorder:      recorder,
		Swagger:       swagger,
		Document:      document,
	})

	metricsWrapper, err := metrics.NewHandlerWrapper().
		AddPaths(
			api.CollectionPath+"/-",
			"/probes/health/liveness",
			"/probes/health/readiness",
			api.DocumentPath,
		).
		SetSubsystem(metricsSubsystem).
		Build()
	if err != nil {
		return fmt.Errorf("failed to create metrics wrapper: %w", err)
	}

	apiListener, err := network.NewListener().
		SetLogger(logger).
		SetFlags(flags, api.APIListener).
		Build()
	if err != nil {
		return fmt.Errorf("failed to create API listener: %w", err)
	}
	metricsListener, err := network.NewListener().
		SetLogger(logger).
		SetFlags(flags, api.MetricsListener).
		Build()
	if err != nil {
		_ = apiListener.Close()
		return fmt.Errorf("failed to create metrics listener: %w", err)
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	apiServer := newServer(apiListener, metricsWrapper(router), logger)
	metricsServer := newServer(metricsListener, metricsMux, logger)

	exitHandler, err := exit.NewHandler().
		SetLogger(logger).
		Build()
	if err != nil {
		return fmt.Errorf("failed to create exit handler: %w", err)
	}
	exitHandler.AddServer(apiServer)
	exitHandler.AddServer(metricsServer)

	group, groupCtx := errgroup.WithContext(ctx)
	for name, entry := range map[string]struct {
		server   *http.Server
		listener net.Listener
	}{
		api.APIListener:     {apiServer, apiListener},
		api.MetricsListener: {metricsServer, metricsListener},
	} {
		group.Go(func() error {
			logger.InfoContext(groupCtx, "Listening", "listener", name, "address", entry.listener.Addr().String())
			if err := entry.server.Serve(entry.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s server failed: %w", name, err)
			}
			return nil
		})
	}
	group.Go(func() error {
		return exitHandler.Wait(groupCtx)
	})

	if err := group.Wait(); err != nil {
		return err //nolint:wrapcheck
	}
	logger.InfoContext(ctx, "Subscriptions server stopped")
	return nil
}

func newServer(listener net.Listener, handler http.Handler, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:         listener.Addr().String(),
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}


/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openshift-kni/oran-dsapi/internal/service/common/auth"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/internal/db/models"
	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/internal/db/repo"
	typederrors "github.com/openshift-kni/oran-dsapi/internal/typed-errors"
)

// Messages of the errors returned to clients
const (
	NotFoundMessage           = "Not Found"
	PreconditionFailedMessage = "Provided ETag does not match current version of resource"
	SubscriberRequiredMessage = "Query parameter \"subscriber\" is required"
)

// Epoch is the watermark of a subscription created without one
var Epoch = time.Unix(0, 0).UTC()

// Store implements the lifecycle of data subscriptions on top of the repository. Every operation
// expects the caller identity to be bound to the context.
type Store struct {
	repo repo.RepositoryInterface
}

func NewStore(repository repo.RepositoryInterface) *Store {
	return &Store{repo: repository}
}

// Create stores a new subscription and returns its id
func (s *Store) Create(ctx context.Context, request CreateRequest) (uuid.UUID, error) {
	if err := request.Validate(); err != nil {
		return uuid.Nil, typederrors.NewValidationError(err, "%s", err.Error())
	}

	tenant, err := auth.Authorize(ctx, request.Producer)
	if err != nil {
		return uuid.Nil, err
	}
	slog.InfoContext(ctx, "Creating data subscription",
		"subscriber_tenant", auth.SubscriberTenant(request.Subscriber), "producer_tenant", tenant)

	begin := Epoch
	if request.BeginWatermark != nil {
		begin = *request.BeginWatermark
	}
	active := true
	if request.Active != nil {
		active = *request.Active
	}

	created, err := s.repo.CreateDataSubscription(ctx, models.DataSubscription{
		Subscriber:      request.Subscriber,
		Producer:        request.Producer,
		DataSourceID:    request.DataSourceID,
		Schedule:        request.Schedule,
		BeginWatermark:  begin,
		UpperWatermark:  begin,
		DestinationPath: request.DestinationPath,
		Active:          active,
	})
	if err != nil {
		if typederrors.IsConflictError(err) {
			return uuid.Nil, err
		}
		return uuid.Nil, fmt.Errorf("failed to create data subscription: %w", err)
	}
	return created.ID, nil
}

// find returns the subscription after checking the caller may access it
func (s *Store) find(ctx context.Context, id uuid.UUID) (*models.DataSubscription, error) {
	record, err := s.repo.GetDataSubscription(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get data subscription '%s': %w", id, err)
	}
	if record == nil {
		return nil, typederrors.NewNotFoundError(NotFoundMessage)
	}
	if _, err := auth.Authorize(ctx, record.Producer); err != nil {
		return nil, err
	}
	return record, nil
}

// Get returns the subscription with the given id
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*models.DataSubscription, error) {
	return s.find(ctx, id)
}

// Update applies the request to the subscription when ifMatch is its current version. The version
// is incremented by one.
func (s *Store) Update(ctx context.Context, id uuid.UUID, ifMatch int, request UpdateRequest) error {
	if err := request.Validate(); err != nil {
		return typederrors.NewValidationError(err, "%s", err.Error())
	}

	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	updated, err := s.repo.UpdateDataSubscription(ctx, id, ifMatch, request.patch())
	if err != nil {
		return fmt.Errorf("failed to update data subscription '%s': %w", id, err)
	}
	if !updated {
		// Deleted since it was read
		current, err := s.repo.GetDataSubscription(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get data subscription '%s': %w", id, err)
		}
		if current == nil {
			return typederrors.NewNotFoundError(NotFoundMessage)
		}
		slog.DebugContext(ctx, "Stale version", "id", id, "version", ifMatch)
		return typederrors.NewPreconditionFailedError(PreconditionFailedMessage)
	}
	return nil
}

// Delete removes the subscription whatever its version
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	deleted, err := s.repo.DeleteDataSubscription(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete data subscription '%s': %w", id, err)
	}
	if !deleted {
		return typederrors.NewNotFoundError(NotFoundMessage)
	}
	return nil
}

// List returns a page of subscriptions of the subscriber, keeping only the ones owned by the
// caller tenant.
func (s *Store) List(ctx context.Context, request ListRequest) (*ListResult, error) {
	if request.Subscriber == "" {
		return nil, typederrors.NewValidationError(nil, SubscriberRequiredMessage)
	}
	identity, ok := auth.IdentityFrom(ctx)
	if !ok {
		return nil, typederrors.NewAuthenticationError(nil, "no authenticated identity")
	}

	records, err := s.repo.ListDataSubscriptions(ctx, repo.ListFilter{
		Subscriber: request.Subscriber,
		Producer:   request.Producer,
		Skip:       request.Skip,
		Top:        request.Top,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list data subscriptions: %w", err)
	}

	result := &ListResult{
		Items:    make([]models.DataSubscription, 0, len(records)),
		PageSize: len(records),
	}
	for _, record := range records {
		if auth.ProducerTenant(record.Producer) != identity.TenantID {
			slog.WarnContext(ctx, "Skipping subscription of another tenant",
				"id", record.ID, "producer", record.Producer)
			continue
		}
		result.Items = append(result.Items, record)
	}
	return result, nil
}

// Ping checks the storage is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx) //nolint:wrapcheck
}

/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/internal/db/models"
)

//go:generate mockgen -source=repository_interface.go -destination=generated/mock_repo.generated.go -package=generated

// ListFilter selects a window of the subscriptions of a subscriber
type ListFilter struct {
	Subscriber string
	Producer   *string
	Skip       int
	Top        int
}

type RepositoryInterface interface {
	// CreateDataSubscription inserts the record unless one with the same subscriber, producer and
	// data source exists, in which case a ConflictError is returned.
	CreateDataSubscription(ctx context.Context, record models.DataSubscription) (*models.DataSubscription, error)
	// GetDataSubscription returns nil when the record does not exist.
	GetDataSubscription(ctx context.Context, id uuid.UUID) (*models.DataSubscription, error)
	// UpdateDataSubscription applies the patch when the stored version matches and reports whether
	// a row was updated.
	UpdateDataSubscription(ctx context.Context, id uuid.UUID, version int, patch models.DataSubscriptionPatch) (bool, error)
	// DeleteDataSubscription reports whether a row was deleted.
	DeleteDataSubscription(ctx context.Context, id uuid.UUID) (bool, error)
	// ListDataSubscriptions returns the id and producer of the subscriptions in the window.
	ListDataSubscriptions(ctx context.Context, filter ListFilter) ([]models.DataSubscription, error)
	Ping(ctx context.Context) error
}

/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package store

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/internal/db/models"
)

// tenantPath matches /<region>/<namespace>/<tenantId>
var tenantPath = regexp.MustCompile(`^/[^/]+/[^/]+/[^/]+$`)

// CreateRequest is the body of a subscription creation
type CreateRequest struct {
	Subscriber      string     `json:"subscriber"`
	Producer        string     `json:"producer"`
	DataSourceID    string     `json:"dataSourceId"`
	Schedule        *string    `json:"schedule,omitempty"`
	BeginWatermark  *time.Time `json:"beginWatermark,omitempty"`
	DestinationPath string     `json:"destinationPath"`
	Active          *bool      `json:"active,omitempty"`
}

func (r CreateRequest) Validate() error {
	return validation.ValidateStruct(&r, //nolint:wrapcheck
		validation.Field(&r.Subscriber, validation.Required, validation.Match(tenantPath)),
		validation.Field(&r.Producer, validation.Required, validation.Match(tenantPath)),
		validation.Field(&r.DataSourceID, validation.Required),
		validation.Field(&r.DestinationPath, validation.Required),
	)
}

// UpdateRequest is the body of a subscription update. Absent fields are left unchanged.
type UpdateRequest struct {
	Schedule        *string    `json:"schedule,omitempty"`
	BeginWatermark  *time.Time `json:"beginWatermark,omitempty"`
	UpperWatermark  *time.Time `json:"upperWatermark,omitempty"`
	DestinationPath *string    `json:"destinationPath,omitempty"`
	Active          *bool      `json:"active,omitempty"`
}

func (r UpdateRequest) Validate() error {
	return validation.ValidateStruct(&r, //nolint:wrapcheck
		validation.Field(&r.DestinationPath, validation.NilOrNotEmpty),
	)
}

func (r UpdateRequest) patch() models.DataSubscriptionPatch {
	return models.DataSubscriptionPatch{
		Schedule:        r.Schedule,
		BeginWatermark:  r.BeginWatermark,
		UpperWatermark:  r.UpperWatermark,
		DestinationPath: r.DestinationPath,
		Active:          r.Active,
	}
}

// ListRequest selects a page of the subscriptions of a subscriber
type ListRequest struct {
	Subscriber string
	Producer   *string
	Skip       int
	Top        int
}

// ListResult is a page of subscriptions visible to the caller. PageSize is the number of rows read
// from the database before the tenant filter was applied.
type ListResult struct {
	Items    []models.DataSubscription
	PageSize int
}

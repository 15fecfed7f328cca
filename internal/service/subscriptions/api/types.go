/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/openshift-kni/oran-dsapi/internal/service/subscriptions/internal/db/models"
)

type Link struct {
	Href string `json:"href"`
}

type Links struct {
	Self Link `json:"self"`
}

// DataSubscription is the representation of a subscription returned by the API
type DataSubscription struct {
	ID              uuid.UUID  `json:"id"`
	Subscriber      string     `json:"subscriber"`
	Producer        string     `json:"producer"`
	DataSourceID    string     `json:"dataSourceId"`
	Schedule        *string    `json:"schedule"`
	BeginWatermark  time.Time  `json:"beginWatermark"`
	UpperWatermark  time.Time  `json:"upperWatermark"`
	DestinationPath string     `json:"destinationPath"`
	Version         int        `json:"version"`
	Active          bool       `json:"active"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
	Links           Links      `json:"_links"`
}

// DataSubscriptionReference is an item of a subscription list
type DataSubscriptionReference struct {
	ID    uuid.UUID `json:"id"`
	Links Links     `json:"_links"`
}

// DataSubscriptionList is a page of subscriptions. Next is null on the last page.
type DataSubscriptionList struct {
	DataSubscriptions []DataSubscriptionReference `json:"dataSubscriptions"`
	Next              *string                     `json:"next"`
}

// GetDataSubscriptionsParams defines parameters for GetDataSubscriptions, the window is read by
// the pagination package.
type GetDataSubscriptionsParams struct {
	Subscriber *string `form:"subscriber,omitempty" json:"subscriber,omitempty"`
	Producer   *string `form:"producer,omitempty" json:"producer,omitempty"`
}

func toDataSubscription(record *models.DataSubscription, self string) DataSubscription {
	return DataSubscription{
		ID:              record.ID,
		Subscriber:      record.Subscriber,
		Producer:        record.Producer,
		DataSourceID:    record.DataSourceID,
		Schedule:        record.Schedule,
		BeginWatermark:  record.BeginWatermark.UTC(),
		UpperWatermark:  record.UpperWatermark.UTC(),
		DestinationPath: record.DestinationPath,
		Version:         record.Version,
		Active:          record.Active,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
		Links:           Links{Self: Link{Href: self}},
	}
}

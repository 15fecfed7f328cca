/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package models

import (
	"time"

	"github.com/google/uuid"
)

// DataSubscription represents a record in the data_subscriptions table.
type DataSubscription struct {
	ID              uuid.UUID  `db:"id"`
	Subscriber      string     `db:"subscriber"`
	Producer        string     `db:"producer"`
	DataSourceID    string     `db:"data_source_id"`
	Schedule        *string    `db:"schedule"`
	BeginWatermark  time.Time  `db:"begin_watermark"`
	UpperWatermark  time.Time  `db:"upper_watermark"`
	DestinationPath string     `db:"destination_path"`
	Version         int        `db:"version"`
	Active          bool       `db:"active"`
	CreatedAt       *time.Time `db:"created_at"`
	UpdatedAt       *time.Time `db:"updated_at"`
}

// TableName returns the table name associated to this model
func (r DataSubscription) TableName() string {
	return "data_subscriptions"
}

// PrimaryKey returns the primary key column associated to this model
func (r DataSubscription) PrimaryKey() string { return "id" }

// OnConflict returns the unique index on the identity triple
func (r DataSubscription) OnConflict() string { return "data_subscriptions_identity_idx" }

// Columns of the table referenced by queries
const (
	ColumnID              = "id"
	ColumnSubscriber      = "subscriber"
	ColumnProducer        = "producer"
	ColumnDataSourceID    = "data_source_id"
	ColumnSchedule        = "schedule"
	ColumnBeginWatermark  = "begin_watermark"
	ColumnUpperWatermark  = "upper_watermark"
	ColumnDestinationPath = "destination_path"
	ColumnVersion         = "version"
	ColumnActive          = "active"
	ColumnCreatedAt       = "created_at"
	ColumnUpdatedAt       = "updated_at"
)

// DataSubscriptionPatch holds the mutable fields of a subscription. Nil fields are left unchanged.
type DataSubscriptionPatch struct {
	Schedule        *string
	BeginWatermark  *time.Time
	UpperWatermark  *time.Time
	DestinationPath *string
	Active          *bool
}

// IsEmpty reports whether the patch changes nothing
func (p DataSubscriptionPatch) IsEmpty() bool {
	return p.Schedule == nil && p.BeginWatermark == nil && p.UpperWatermark == nil &&
		p.DestinationPath == nil && p.Active == nil
}

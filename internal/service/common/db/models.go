/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package db

// Model is implemented by every struct that is persisted to a table. The struct fields carry
// `db` tags with the column names.
type Model interface {
	PrimaryKey() string
	TableName() string
	OnConflict() string
}

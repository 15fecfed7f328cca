/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package utils

import (
	"reflect"
	"slices"

	"github.com/openshift-kni/oran-dsapi/internal/service/common/db"
)

// DBTag is an ordered list of field name to column name pairs. The order follows the declaration
// order of the struct fields so that columns and values built from the same tags stay aligned.
type DBTag []DBColumn

type DBColumn struct {
	Field  string
	Column string
}

// Columns is used in the Columns method of the SelectBuilder to convert the DBTag to a slice of any.
func (r DBTag) Columns() []any {
	columns := make([]any, 0, len(r))
	for _, tag := range r {
		columns = append(columns, tag.Column)
	}
	return columns
}

// Names returns the column names.
func (r DBTag) Names() []string {
	names := make([]string, 0, len(r))
	for _, tag := range r {
		names = append(names, tag.Column)
	}
	return names
}

// Without returns a copy of the tags excluding the given column names.
func (r DBTag) Without(columns ...string) DBTag {
	result := make(DBTag, 0, len(r))
	for _, tag := range r {
		if !slices.Contains(columns, tag.Column) {
			result = append(result, tag)
		}
	}
	return result
}

func structOf(s any) (reflect.Type, reflect.Value) {
	st := reflect.TypeOf(s)
	sv := reflect.ValueOf(s)
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
		sv = sv.Elem()
	}
	return st, sv
}

// getDBTagsFromStruct returns the db tags of the struct. Fields without a tag, or tagged "-", are
// skipped. When excludeNil is set nil pointer fields are skipped as well.
func getDBTagsFromStruct[T db.Model](s T, excludeNil bool) DBTag {
	st, sv := structOf(s)

	tags := make(DBTag, 0, st.NumField())
	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		column := field.Tag.Get("db")
		if column == "" || column == "-" {
			continue
		}
		if excludeNil && field.Type.Kind() == reflect.Pointer && sv.Field(i).IsNil() {
			continue
		}
		tags = append(tags, DBColumn{Field: field.Name, Column: column})
	}
	return tags
}

// GetNonNilDBTagsFromStruct returns the db tags of the struct. Only non-pointer fields or non-nil
// pointer fields are considered.
func GetNonNilDBTagsFromStruct[T db.Model](s T) DBTag {
	return getDBTagsFromStruct(s, true)
}

// GetAllDBTagsFromStruct returns the db tags of all the fields of the struct.
func GetAllDBTagsFromStruct[T db.Model](s T) DBTag {
	return getDBTagsFromStruct(s, false)
}

// GetDBTagsFromStructFields returns the db tags of the named fields only. Non-existent fields are
// ignored.
func GetDBTagsFromStructFields[T db.Model](s T, fields ...string) DBTag {
	st, _ := structOf(s)

	tags := make(DBTag, 0, len(fields))
	for _, name := range fields {
		f, found := st.FieldByName(name)
		if !found {
			continue
		}
		tags = append(tags, DBColumn{Field: f.Name, Column: f.Tag.Get("db")})
	}
	return tags
}

// GetColumnsAndValues returns the columns named in tags together with the matching field values.
// Nil pointer fields are left out of both lists.
func GetColumnsAndValues[T db.Model](s T, tags DBTag) ([]string, []any) {
	_, sv := structOf(s)

	columns := make([]string, 0, len(tags))
	values := make([]any, 0, len(tags))
	for _, tag := range tags {
		fv := sv.FieldByName(tag.Field)
		if !fv.IsValid() {
			continue
		}
		if fv.Kind() == reflect.Pointer && fv.IsNil() {
			continue
		}
		columns = append(columns, tag.Column)
		values = append(values, fv.Interface())
	}
	return columns, values
}

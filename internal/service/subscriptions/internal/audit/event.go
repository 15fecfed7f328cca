/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package audit

import (
	"encoding/json"
	"strconv"
	"time"
)

// Operation is the kind of configuration change
type Operation string

const (
	OperationCreate Operation = "CREATE"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
)

// State tells whether the change was applied
type State string

const (
	StateSuccess State = "SUCCESS"
	StateFailure State = "FAILURE"
)

// Undefined marks an attribute value that is not known. Such values are removed before the event
// is submitted.
const Undefined = "undefined"

// Attribute names with a fixed meaning
const (
	AttributeID           = "id"
	AttributeErrorStatus  = "error-status"
	AttributeErrorMessage = "error-message"
	AttributeNoFields     = "no_fields"
)

// Attribute is one changed field
type Attribute struct {
	Name string `json:"name"`
	Old  string `json:"old,omitempty"`
	New  string `json:"new,omitempty"`
}

// Object identifies the changed entity
type Object struct {
	ID          string `json:"id,omitempty"`
	UniversalID string `json:"universalId,omitempty"`
	ArID        string `json:"arId,omitempty"`
}

// Event is a configuration change as submitted to the audit log
type Event struct {
	Namespace  string      `json:"namespace"`
	Operation  Operation   `json:"operation"`
	State      State       `json:"state"`
	Object     Object      `json:"object"`
	Attributes []Attribute `json:"attributes"`
	Tenant     string      `json:"tenant"`
	User       string      `json:"user"`
	Time       time.Time   `json:"time"`
}

// stringify renders a value decoded from a JSON body as an attribute value
func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return "null"
	default:
		out, err := json.Marshal(v)
		if err != nil {
			return Undefined
		}
		return string(out)
	}
}

// clean drops the old and new values that carry no information. The attribute itself is kept.
func clean(attributes []Attribute) []Attribute {
	for i := range attributes {
		if attributes[i].Old == Undefined {
			attributes[i].Old = ""
		}
		if attributes[i].New == Undefined {
			attributes[i].New = ""
		}
	}
	return attributes
}

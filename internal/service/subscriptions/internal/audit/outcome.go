/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package audit

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/openshift-kni/oran-dsapi/internal/service/common/auth"
)

// Outcome is what is known about a mutating request once it has been served
type Outcome struct {
	Method string
	// Status is the status code of the response
	Status int
	// Body is the decoded request body, nil when it was not a JSON object
	Body map[string]any
	// PathID is the id of the resource addressed by the path
	PathID string
	// Query holds the query parameters of the request
	Query map[string][]string
	// Location is the Location header of the response
	Location string
	// Message is the detail of the problem returned on failure
	Message string
	// Identity is the authenticated caller, if any
	Identity *auth.Identity
}

// operation maps the request method, the second value is false for read only methods
func (o Outcome) operation() (Operation, bool) {
	switch o.Method {
	case http.MethodPost:
		return OperationCreate, true
	case http.MethodPut, http.MethodPatch:
		return OperationUpdate, true
	case http.MethodDelete:
		return OperationDelete, true
	default:
		return "", false
	}
}

func (o Outcome) succeeded() bool {
	return o.Status >= http.StatusOK && o.Status < http.StatusMultipleChoices
}

func (o Outcome) query(name string) string {
	if values := o.Query[name]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func (o Outcome) body(name string) string {
	if o.Body == nil {
		return ""
	}
	value, ok := o.Body[name]
	if !ok || value == nil {
		return ""
	}
	return stringify(value)
}

// id returns the id of the entity. A created entity only has the id generated by the server,
// the others take it from the path, the query or the body, in that order.
func (o Outcome) id() string {
	if operation, _ := o.operation(); operation == OperationCreate {
		if !o.succeeded() {
			return ""
		}
		return o.createdID()
	}
	for _, id := range []string{o.PathID, o.query(AttributeID), o.body(AttributeID)} {
		if id != "" {
			return id
		}
	}
	return ""
}

// createdID is the last segment of the Location header
func (o Outcome) createdID() string {
	if o.Location == "" {
		return ""
	}
	return o.Location[strings.LastIndex(o.Location, "/")+1:]
}

func (o Outcome) object() Object {
	universalID := o.query("universal-id")
	if universalID == "" {
		universalID = o.body("universal-id")
	}
	return Object{
		ID:          o.id(),
		UniversalID: universalID,
		ArID:        o.body("arId"),
	}
}

// user returns the locality and common name of the caller
func (o Outcome) user() string {
	if o.Identity == nil {
		return DefaultUser
	}
	var parts []string
	for _, attribute := range o.Identity.SubjectAttributes {
		if attribute.ShortName == "L" || attribute.ShortName == "CN" {
			parts = append(parts, attribute.Value)
		}
	}
	if len(parts) == 0 {
		return DefaultUser
	}
	return strings.Join(parts, " ")
}

// changes builds the attributes of the event
func (o Outcome) changes(operation Operation, ignored []string) []Attribute {
	var attributes []Attribute
	if !o.succeeded() {
		attributes = append(attributes,
			Attribute{Name: AttributeErrorStatus, Old: Undefined, New: strconv.Itoa(o.Status)},
			Attribute{Name: AttributeErrorMessage, Old: Undefined, New: o.Message},
		)
		return attributes
	}

	switch operation {
	case OperationCreate:
		if id := o.id(); id != "" {
			attributes = append(attributes, Attribute{Name: AttributeID, Old: Undefined, New: id})
		}
		attributes = append(attributes, o.bodyChanges(ignored)...)
	case OperationUpdate:
		attributes = append(attributes, o.bodyChanges(ignored)...)
	case OperationDelete:
		attributes = append(attributes, Attribute{Name: AttributeID, Old: o.id(), New: Undefined})
	}

	if len(attributes) == 0 {
		attributes = append(attributes, Attribute{Name: AttributeNoFields, Old: Undefined, New: Undefined})
	}
	return attributes
}

func (o Outcome) bodyChanges(ignored []string) []Attribute {
	names := make([]string, 0, len(o.Body))
	for name := range o.Body {
		if name == AttributeID || slices.Contains(ignored, name) {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)

	attributes := make([]Attribute, 0, len(names))
	for _, name := range names {
		attributes = append(attributes, Attribute{Name: name, Old: Undefined, New: stringify(o.Body[name])})
	}
	return attributes
}

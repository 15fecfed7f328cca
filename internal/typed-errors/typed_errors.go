/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package typederrors

import (
	"errors"
	"fmt"
)

// GenericError is an error structure containing common fields to be
// embedded by specific error types defined below
type GenericError struct {
	Message string
	Err     error
}

func (ge GenericError) Error() string {
	return ge.Message
}

func (ge GenericError) Unwrap() error {
	return ge.Err
}

func newGeneric(err error, format string, args ...interface{}) GenericError {
	return GenericError{Message: fmt.Sprintf(format, args...), Err: err}
}

// ValidationError is returned when a request payload or parameter is malformed or incomplete.
type ValidationError struct {
	GenericError
}

func NewValidationError(err error, format string, args ...interface{}) error {
	return ValidationError{GenericError: newGeneric(err, format, args...)}
}

func IsValidationError(target error) bool {
	var e ValidationError
	return errors.As(target, &e)
}

// MissingTenantError is returned when the request does not declare the tenant it acts for.
type MissingTenantError struct {
	GenericError
}

func NewMissingTenantError(format string, args ...interface{}) error {
	return MissingTenantError{GenericError: newGeneric(nil, format, args...)}
}

func IsMissingTenantError(target error) bool {
	var e MissingTenantError
	return errors.As(target, &e)
}

// AuthenticationError is returned when the caller identity could not be established.
type AuthenticationError struct {
	GenericError
}

func NewAuthenticationError(err error, format string, args ...interface{}) error {
	return AuthenticationError{GenericError: newGeneric(err, format, args...)}
}

func IsAuthenticationError(target error) bool {
	var e AuthenticationError
	return errors.As(target, &e)
}

// AuthorizationError is returned when the authenticated tenant does not own the resource.
type AuthorizationError struct {
	GenericError
}

func NewAuthorizationError(format string, args ...interface{}) error {
	return AuthorizationError{GenericError: newGeneric(nil, format, args...)}
}

func IsAuthorizationError(target error) bool {
	var e AuthorizationError
	return errors.As(target, &e)
}

// NotFoundError type
type NotFoundError struct {
	GenericError
}

func NewNotFoundError(format string, args ...interface{}) error {
	return NotFoundError{GenericError: newGeneric(nil, format, args...)}
}

func IsNotFoundError(target error) bool {
	var e NotFoundError
	return errors.As(target, &e)
}

// ConflictError is returned when a record with the same identifying fields already exists.
type ConflictError struct {
	GenericError
}

func NewConflictError(err error, format string, args ...interface{}) error {
	return ConflictError{GenericError: newGeneric(err, format, args...)}
}

func IsConflictError(target error) bool {
	var e ConflictError
	return errors.As(target, &e)
}

// PreconditionRequiredError is returned when a conditional request lacks a usable version token.
type PreconditionRequiredError struct {
	GenericError
}

func NewPreconditionRequiredError(err error, format string, args ...interface{}) error {
	return PreconditionRequiredError{GenericError: newGeneric(err, format, args...)}
}

func IsPreconditionRequiredError(target error) bool {
	var e PreconditionRequiredError
	return errors.As(target, &e)
}

// PreconditionFailedError is returned when the supplied version token is not the current one.
type PreconditionFailedError struct {
	GenericError
}

func NewPreconditionFailedError(format string, args ...interface{}) error {
	return PreconditionFailedError{GenericError: newGeneric(nil, format, args...)}
}

func IsPreconditionFailedError(target error) bool {
	var e PreconditionFailedError
	return errors.As(target, &e)
}

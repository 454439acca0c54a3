// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bureau-foundation/synadmin/synapse"
)

// ErrorCategory classifies command errors so that scripts can decide
// between fixing input, retrying, and escalating without parsing the
// message.
type ErrorCategory string

const (
	// CategoryValidation: the caller provided invalid input (missing
	// arguments, unparseable values, a bad config file).
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound: a referenced room, user, token, or report does
	// not exist.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryForbidden: the access token is missing, unknown, or not a
	// server admin's.
	CategoryForbidden ErrorCategory = "forbidden"

	// CategoryConflict: the operation conflicts with server state, such
	// as a user ID or room that is already in use.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryTransient: a network failure, rate limit, or server-side
	// error that may succeed on retry.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal: anything else, including responses synadmin
	// does not recognize.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorised command error. It wraps the underlying
// error so errors.Is and errors.As see the whole chain. Use the
// category constructors rather than building one directly.
type ToolError struct {
	Category ErrorCategory
	Err      error
}

// Error returns the underlying message; the category travels
// separately.
func (e *ToolError) Error() string { return e.Err.Error() }

func (e *ToolError) Unwrap() error { return e.Err }

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Forbidden creates a forbidden error.
func Forbidden(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryForbidden, Err: fmt.Errorf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryConflict, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error.
func Transient(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// CategoryOf returns the category of err if it is (or wraps) a
// *ToolError, and CategoryInternal otherwise.
func CategoryOf(err error) ErrorCategory {
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return toolErr.Category
	}
	return CategoryInternal
}

// ExitCodeFor returns the process exit code for a command error: 2 for
// validation errors, 1 for everything else.
func ExitCodeFor(err error) int {
	if CategoryOf(err) == CategoryValidation {
		return 2
	}
	return 1
}

// FromSynapse wraps an admin API error with the action that failed
// ("list rooms") and categorises it by its kind and Matrix error code.
func FromSynapse(err error, action string) *ToolError {
	wrapped := fmt.Errorf("%s: %w", action, err)

	var synapseErr *synapse.Error
	if !errors.As(err, &synapseErr) {
		return &ToolError{Category: CategoryInternal, Err: wrapped}
	}

	category := CategoryInternal
	switch synapseErr.Kind {
	case synapse.KindHeaderConstruction, synapse.KindURLParse:
		category = CategoryValidation
	case synapse.KindTransport:
		category = CategoryTransient
	case synapse.KindAPI:
		category = categoryForMatrixError(synapseErr.Matrix)
	case synapse.KindUnrecognizedResponse:
		if synapseErr.StatusCode >= http.StatusInternalServerError {
			category = CategoryTransient
		}
	}
	return &ToolError{Category: category, Err: wrapped}
}

func categoryForMatrixError(matrixErr *synapse.MatrixError) ErrorCategory {
	switch matrixErr.Code {
	case synapse.ErrCodeNotFound:
		return CategoryNotFound
	case synapse.ErrCodeForbidden, synapse.ErrCodeUnknownToken, synapse.ErrCodeMissingToken:
		return CategoryForbidden
	case synapse.ErrCodeUserInUse, synapse.ErrCodeRoomInUse:
		return CategoryConflict
	case synapse.ErrCodeLimitExceeded:
		return CategoryTransient
	case synapse.ErrCodeInvalidParam, synapse.ErrCodeMissingParam,
		synapse.ErrCodeBadJSON, synapse.ErrCodeNotJSON, synapse.ErrCodeUnrecognized:
		return CategoryValidation
	}
	switch {
	case matrixErr.StatusCode == http.StatusNotFound:
		return CategoryNotFound
	case matrixErr.StatusCode == http.StatusForbidden || matrixErr.StatusCode == http.StatusUnauthorized:
		return CategoryForbidden
	case matrixErr.StatusCode >= http.StatusInternalServerError:
		return CategoryTransient
	}
	return CategoryInternal
}

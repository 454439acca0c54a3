// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorKind classifies a failed admin API call.
type ErrorKind int

const (
	// KindHeaderConstruction means the default request headers could not
	// be built, typically because the access token contains characters
	// that are not valid in an HTTP header value.
	KindHeaderConstruction ErrorKind = iota + 1

	// KindURLParse means the composed request URL was not a valid
	// absolute URL.
	KindURLParse

	// KindTransport means the request did not complete: encoding the
	// body, connecting, TLS, timeouts, cancellation, or reading the
	// response.
	KindTransport

	// KindAPI means the server answered with a Matrix error object.
	// Error.Matrix holds the errcode and message exactly as sent.
	KindAPI

	// KindUnrecognizedResponse means the server answered with a body that
	// matched neither the expected payload nor the error shape.
	// Error.Raw holds the body as a JSON value.
	KindUnrecognizedResponse
)

// String returns the snake_case name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindHeaderConstruction:
		return "header_construction"
	case KindURLParse:
		return "url_parse"
	case KindTransport:
		return "transport"
	case KindAPI:
		return "api"
	case KindUnrecognizedResponse:
		return "unrecognized_response"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is the single error type returned by every Client operation.
// Use errors.As to extract it, or KindOf for the kind alone:
//
//	var apiErr *synapse.Error
//	if errors.As(err, &apiErr) && apiErr.Kind == synapse.KindTransport { ... }
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Method and Path identify the call: the HTTP method and the admin
	// path suffix (e.g., "/rooms/%21abc:example.org"). Empty for
	// failures at client construction.
	Method string
	Path   string

	// StatusCode is the HTTP status of the response, or zero when no
	// response was received.
	StatusCode int

	// Matrix is the server's error object. Set only for KindAPI.
	Matrix *MatrixError

	// Raw is the response body. Set only for KindUnrecognizedResponse.
	// A body that is not JSON is held as a JSON string. With a non-2xx
	// StatusCode, Raw may be a body shaped like the expected payload:
	// error statuses never decode as success.
	Raw json.RawMessage

	// Err is the underlying cause for header, URL, and transport
	// failures.
	Err error
}

func (e *Error) Error() string {
	prefix := "synapse"
	if e.Method != "" {
		prefix = fmt.Sprintf("synapse: %s %s", e.Method, e.Path)
	}
	switch e.Kind {
	case KindAPI:
		return fmt.Sprintf("%s: %s", prefix, e.Matrix.Error())
	case KindUnrecognizedResponse:
		return fmt.Sprintf("%s: unrecognized response (HTTP %d): %s", prefix, e.StatusCode, truncateBody(e.Raw))
	default:
		if e.Err == nil {
			return fmt.Sprintf("%s: %s", prefix, e.Kind)
		}
		return fmt.Sprintf("%s: %s: %v", prefix, e.Kind, e.Err)
	}
}

// Unwrap exposes the MatrixError for KindAPI and the underlying cause
// for every other kind.
func (e *Error) Unwrap() error {
	if e.Matrix != nil {
		return e.Matrix
	}
	return e.Err
}

// maxErrorBody bounds how much of an unrecognized body goes into an
// error string. Error.Raw still holds the whole body.
const maxErrorBody = 512

func truncateBody(raw []byte) string {
	if len(raw) <= maxErrorBody {
		return string(raw)
	}
	return string(raw[:maxErrorBody]) + "..."
}

// KindOf returns the ErrorKind of err if it is (or wraps) an *Error,
// and zero otherwise.
func KindOf(err error) ErrorKind {
	var synapseErr *Error
	if errors.As(err, &synapseErr) {
		return synapseErr.Kind
	}
	return 0
}

// MatrixError represents a structured error response from the homeserver.
// Callers can use errors.As to extract the structured information:
//
//	var matrixErr *synapse.MatrixError
//	if errors.As(err, &matrixErr) {
//	    if matrixErr.Code == synapse.ErrCodeNotFound { ... }
//	}
type MatrixError struct {
	// Code is the Matrix error code (e.g., "M_FORBIDDEN", "M_NOT_FOUND").
	Code string `json:"errcode"`
	// Message is the human-readable error description from the server.
	Message string `json:"error"`
	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"-"`
}

func (e *MatrixError) Error() string {
	return fmt.Sprintf("matrix: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Matrix error codes the admin API returns.
const (
	ErrCodeForbidden     = "M_FORBIDDEN"
	ErrCodeUnknownToken  = "M_UNKNOWN_TOKEN"
	ErrCodeMissingToken  = "M_MISSING_TOKEN"
	ErrCodeNotFound      = "M_NOT_FOUND"
	ErrCodeLimitExceeded = "M_LIMIT_EXCEEDED"
	ErrCodeUnrecognized  = "M_UNRECOGNIZED"
	ErrCodeUnknown       = "M_UNKNOWN"
	ErrCodeInvalidParam  = "M_INVALID_PARAM"
	ErrCodeMissingParam  = "M_MISSING_PARAM"
	ErrCodeNotJSON       = "M_NOT_JSON"
	ErrCodeBadJSON       = "M_BAD_JSON"
	ErrCodeUserInUse     = "M_USER_IN_USE"
	ErrCodeRoomInUse     = "M_ROOM_IN_USE"
)

// IsMatrixError checks whether err is (or wraps) a *MatrixError with the
// given error code.
func IsMatrixError(err error, code string) bool {
	var matrixErr *MatrixError
	if errors.As(err, &matrixErr) {
		return matrixErr.Code == code
	}
	return false
}

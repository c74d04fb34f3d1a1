// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the chat client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches sentinel errors by type.
func (e *ClientError) Is(target error) bool {
	var t *ClientError
	if !errors.As(target, &t) {
		return false
	}
	return t.Type == e.Type && t.Cause == nil
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeEmptyMessage
	ErrTypeMixedContent
	ErrTypeTimeout
	ErrTypeConnection
	ErrTypeStatus
	ErrTypeInvalidResponse
	ErrTypeTooLarge
)

func (t ErrorType) String() string {
	switch t {
	case ErrTypeEmptyMessage:
		return "empty_message"
	case ErrTypeMixedContent:
		return "mixed_content"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeConnection:
		return "connection"
	case ErrTypeStatus:
		return "status"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	case ErrTypeTooLarge:
		return "too_large"
	default:
		return "unknown"
	}
}

// Sentinel errors for easy checking.
var (
	ErrEmptyMessage  = &ClientError{Type: ErrTypeEmptyMessage, Message: "message is empty"}
	ErrMixedContent  = &ClientError{Type: ErrTypeMixedContent, Message: "insecure backend blocked on a secure page"}
	ErrTimeout       = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrConnection    = &ClientError{Type: ErrTypeConnection, Message: "backend unreachable"}
	ErrBadResponse   = &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid response"}
	ErrResponseLarge = &ClientError{Type: ErrTypeTooLarge, Message: "response too large"}
)

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	StatusCode int
	// Detail is the sanitized server message, or the raw body when the
	// body carried no recognizable error field.
	Detail string
	// Structured reports whether Detail came from a JSON error field.
	Structured bool
}

func (e *StatusError) Error() string {
	if e.Structured {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.StatusCode, e.Detail)
	}
	if e.Detail != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// typeOf returns the ErrorType of err, or ErrTypeUnknown.
func typeOf(err error) ErrorType {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ErrTypeUnknown
}

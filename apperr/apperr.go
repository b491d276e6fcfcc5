// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Kind is the machine-checkable class of a failure.
type Kind string

const (
	KindNotFound            Kind = "NotFound"
	KindDuplicate           Kind = "Duplicate"
	KindInvalidType         Kind = "InvalidType"
	KindInvalidEnum         Kind = "InvalidEnum"
	KindInvalidEnumValue    Kind = "InvalidEnumValue"
	KindCoercion            Kind = "CoercionError"
	KindParse               Kind = "ParseError"
	KindNoResults           Kind = "NoResults"
	KindUpstreamTranslation Kind = "UpstreamTranslationError"

	// Request-shape failures that do not belong to one of the kinds above.
	KindInvalid         Kind = "Invalid"
	KindFieldMismatch   Kind = "FieldMismatch"
	KindInvalidOperator Kind = "InvalidOperator"
	KindBatchFailed     Kind = "BatchFailed"

	KindInternal Kind = "Internal"
)

// Error is a tagged failure returned by the core packages.
type Error struct {
	Kind    Kind
	Message string
	// Query is the DSL text that was being executed, if any.
	Query string
	// Details carries structured context such as per-item batch failures.
	Details interface{}

	cause error
}

func (e *Error) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("%s: %s (query %q)", e.Kind, e.Message, e.Query)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New returns a tagged error with a stack trace attached.
func New(kind Kind, format string, args ...interface{}) error {
	return errors.WithStackDepth(&Error{Kind: kind, Message: fmt.Sprintf(format, args...)}, 1)
}

// NewWithDetails is New with structured details for the client.
func NewWithDetails(kind Kind, details interface{}, format string, args ...interface{}) error {
	return errors.WithStackDepth(&Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Details: details,
	}, 1)
}

// Wrap tags cause with kind; the cause text is kept in the message.
func Wrap(cause error, kind Kind, format string, args ...interface{}) error {
	if cause == nil {
		return nil
	}
	return errors.WithStackDepth(&Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...) + ": " + cause.Error(),
		cause:   cause,
	}, 1)
}

// NotFound is shorthand for the most common lookup failure.
func NotFound(what, name string) error {
	return errors.WithStackDepth(&Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s %q not found", what, name),
	}, 1)
}

// As extracts the tagged error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports the kind of err; untagged errors are Internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// WithQuery records the attempted DSL text on a tagged error. Untagged
// errors become Internal so the text is never lost.
func WithQuery(err error, query string) error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		e.Query = query
		return err
	}
	return errors.WithStackDepth(&Error{
		Kind:    KindInternal,
		Message: err.Error(),
		Query:   query,
	}, 1)
}

// Message is the client-facing text for err. Internal errors are not
// described beyond a generic message.
func Message(err error) string {
	if e, ok := As(err); ok && e.Kind != KindInternal {
		return e.Message
	}
	return "internal error"
}

// Hint returns the flattened user hints attached with errors.WithHint.
func Hint(err error) string {
	return errors.FlattenHints(err)
}

// HTTPStatus maps a kind to the response code used by the routing layer.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound, KindNoResults:
		return http.StatusNotFound
	case KindDuplicate:
		return http.StatusConflict
	case KindInvalidType, KindInvalidEnum, KindInvalidEnumValue, KindCoercion,
		KindParse, KindInvalid, KindFieldMismatch, KindInvalidOperator, KindBatchFailed:
		return http.StatusBadRequest
	case KindUpstreamTranslation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package apperr defines the tagged errors returned by the core packages.

Every failure that a caller can act on carries a Kind:

	NotFound, Duplicate, InvalidType, InvalidEnum, InvalidEnumValue,
	CoercionError, ParseError, NoResults, UpstreamTranslationError

plus Invalid, FieldMismatch, InvalidOperator and BatchFailed for request
shapes the core rejects. Anything else is Internal.

Errors are built on github.com/cockroachdb/errors, so they carry stack
traces and may be decorated with hints:

	err := apperr.New(apperr.KindParse, "invalid operator")
	err = errors.WithHint(err, "use group.field OP value")

	apperr.KindOf(err)            // KindParse
	apperr.HTTPStatus(KindOf(err)) // 400

DSL-producing paths attach the attempted query text with WithQuery so the
routing layer can echo it back on failure.
*/
package apperr

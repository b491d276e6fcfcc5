// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, and response types for the API.

# Schema Types

  - Category: top-level classification
  - Group: a schema of fields inside a category (an "asset type")
  - Field: a typed attribute of a group; ValueType is Number, Text,
    Boolean or Enum and never changes after creation
  - Entity: an anonymous instance of a group
  - Entry: one recorded value for one (entity, field) pair

# Values

Value is a small tagged union over the three physical stores:

	NumberValue  // entry_number
	BoolValue    // entry_bool
	TextValue    // entry_text (Text and Enum fields)

Values marshal to their natural JSON form (number, bool, string).
NumberValue.String drops trailing zeros so numbers read the same way
regardless of how they were typed in.

# Consolidated Views

EntityAttributes is the per-entity view built by the query engine:
attributes keyed by field name, each with value, type tag, date and entry id.
Entities may hold any subset of their group's fields.

# Errors

ErrorResponse is the body of every non-2xx response. DSL is set on query
endpoints so the attempted query is always visible.
*/
package models

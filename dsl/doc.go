// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package dsl parses the filter language used to query entities.

# Grammar

	query      := bare_group | predicate
	bare_group := [a-z_]+
	predicate  := group "." field OP value
	OP         := like | is | == | >= | <= | > | < | !=

Values may be wrapped in single quotes: lettuce.grade is 'Premium'.

# Parsing

Parse checks syntax only. It never looks at the schema, so text produced by
the natural-language translator can be validated before any lookup. Type
rules (which operators a Number, Text, Boolean or Enum field accepts) are
applied by package query.

Failures are apperr.KindParse errors carrying the attempted text and one of
the reasons:

	empty query
	invalid bare-query characters
	invalid operator
	missing operand
	invalid field reference
*/
package dsl

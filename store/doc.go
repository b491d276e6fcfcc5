// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store records attribute values.

Values are partitioned by type into three tables: entry_number,
entry_bool and entry_text. Enum values are text constrained to the field's
options. Each (entity, field) pair has at most one entry; writing again
replaces the value and date in place, so no history is kept.

# Coercion

	Number   float64, ints, numeric strings ("12.5"); NaN and Inf rejected
	Boolean  true/false, "true"/"false"/"1"/"0", 1/0
	Text     any scalar, rendered as text
	Enum     exact member of the option set, otherwise InvalidEnumValue

Dates are YYYY-MM-DD and default to today.

# Batches

CreateEntityWithEntries runs in one transaction with a savepoint per entry.
Failed entries are reported in FailedEntries and skipped. When every entry
fails the transaction is rolled back, so the entity never exists, and the
error carries the failure list as details.
*/
package store

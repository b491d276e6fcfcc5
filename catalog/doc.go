// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package catalog owns the runtime-defined schema: categories, groups, typed
fields and the option sets of Enum fields.

# Hierarchy

	category ─┬─ group ─┬─ field (Number | Text | Boolean | Enum)
	          │         │     └─ enum options
	          │         └─ entity ─ entries (see package store)

# Names

Names are compared through NormalizeName: case-folded, trimmed, with runs of
whitespace and underscores collapsed to one space. "Produce", "  produce"
and "PRODUCE" collide; "Roma Tomatoes" is found by "roma_tomatoes".

  - category names are unique overall
  - group names are unique within their category
  - field names are unique within their group

Violations fail with apperr.KindDuplicate.

# Fields

A field's value type never changes after creation. Enum fields need at
least one option; creating or updating an Enum field writes the field row
and the whole option set in one transaction, replacing any previous set.

# Deletes

DeleteCategory, DeleteGroup and DeleteField cascade to everything below and
return models.Deleted or models.AlreadyAbsent. Neither is an error.

# Usage

	svc := catalog.NewService(conn)
	cat, err := svc.CreateCategory(ctx, "Produce")
	grp, err := svc.CreateGroup(ctx, "produce", "Lettuce")
	fld, err := svc.CreateField(ctx, models.CreateFieldRequest{
		GroupName:   "lettuce",
		Name:        "grade",
		ValueType:   "Enum",
		EnumOptions: []string{"A", "B", "C"},
	})
*/
package catalog

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package query runs DSL queries against the attribute store.

Each entity's values are spread over three pivot tables. The engine reads
them concurrently (errgroup) and folds them into one map per entity keyed by
field name:

	{
	  "entity_id": "…",
	  "attributes": {
	    "weight": {"value": 120.5, "type": "Number", "date": "2024-05-01", "entry_id": "…"},
	    "grade":  {"value": "A",   "type": "Enum",   "date": "2024-05-01", "entry_id": "…"}
	  }
	}

# Operators by field type

	Number         ==  !=  >  >=  <  <=
	Boolean        ==  (true or false)
	Text, Enum     is (exact)  like (substring)

Text comparison ignores case, surrounding space, and the difference between
underscores and spaces. Any other operator is apperr.KindInvalidOperator.

# Outcomes

	unknown group or field          NotFound
	predicate matched nothing       NoResults
	group without predicate, empty  success, empty list
*/
package query

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the fieldbook API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - CatalogHandler: Categories, groups and fields
  - EntityHandler: Entities, their entries and group listings
  - QueryHandler: DSL and natural-language queries

Handlers are created via constructor functions that accept *sql.DB and Config:

	catalogHandler := handlers.NewCatalogHandler(db, cfg)

# Errors

Handlers render core errors with middleware.WriteError. The apperr kind
picks the status code:

	NotFound, NoResults        → 404
	Duplicate                  → 409
	validation kinds           → 400
	UpstreamTranslationError   → 502
	anything else              → 500

# Batch Entity Creation

POST /entities records every entry it can. The response lists
successful_entries and failed_entries. When no entry is stored the entity
is discarded and the request fails with BatchFailed, the failures in
"details".

# Queries

Both query endpoints echo the query text they ran as "dsl", on success and
on failure:

	GET /query/dsl?query=roma_tomatoes.weight > 100
	GET /query/nl?query=which tomatoes weigh over 100 grams

The natural-language endpoint needs OPENAI_API_KEY; without it every
request fails with UpstreamTranslationError.
*/
package handlers

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the relational store and creates its schema.

# Dialects

Two engines are supported through database/sql:

  - postgres: github.com/lib/pq
  - sqlite:   modernc.org/sqlite (default; also used by the tests)

	conn, err := db.Open(ctx, db.SQLite, "file:fieldbook.db")

SQLite connections always enable foreign keys so cascading deletes behave
the same on both engines.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - category: top-level classification, unique normalised name
  - asset_group: groups, unique name per category
  - field: typed attributes, unique name per group
  - enum_option: allowed values of Enum fields
  - entity: anonymous instances of a group
  - entry_number, entry_bool, entry_text: one recorded value per
    (entity, field), partitioned by value type

# Relationships

	category 1──* asset_group
	asset_group 1──* field
	field 1──* enum_option
	asset_group 1──* entity
	entity 1──* entry_*
	field 1──* entry_*

All foreign keys use ON DELETE CASCADE.

# Transactions

Querier abstracts over *sql.DB and *sql.Tx. InTx wraps a function in a
transaction that commits only on success.
*/
package db

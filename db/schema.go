// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to create schema")
		}
	}
	return nil
}

// The DDL is the subset both Postgres and SQLite accept. Statements run one
// at a time because not every driver takes multi-statement strings.
var schema = []string{
	// Categories
	`CREATE TABLE IF NOT EXISTS category (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		name_key TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL
	)`,

	// Groups (asset types)
	`CREATE TABLE IF NOT EXISTS asset_group (
		id TEXT PRIMARY KEY,
		category_id TEXT NOT NULL REFERENCES category(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		name_key TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		UNIQUE (category_id, name_key)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_asset_group_name_key ON asset_group(name_key)`,

	// Fields
	`CREATE TABLE IF NOT EXISTS field (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL REFERENCES asset_group(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		name_key TEXT NOT NULL,
		value_type TEXT NOT NULL CHECK (value_type IN ('Number', 'Text', 'Boolean', 'Enum')),
		units TEXT,
		created_at TIMESTAMP NOT NULL,
		UNIQUE (group_id, name_key)
	)`,

	// Enum options
	`CREATE TABLE IF NOT EXISTS enum_option (
		field_id TEXT NOT NULL REFERENCES field(id) ON DELETE CASCADE,
		option_value TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (field_id, option_value)
	)`,

	// Entities (assets)
	`CREATE TABLE IF NOT EXISTS entity (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL REFERENCES asset_group(id) ON DELETE CASCADE,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_entity_group_id ON entity(group_id)`,

	// Entries, one table per physical value type
	`CREATE TABLE IF NOT EXISTS entry_number (
		id TEXT PRIMARY KEY,
		entity_id TEXT NOT NULL REFERENCES entity(id) ON DELETE CASCADE,
		field_id TEXT NOT NULL REFERENCES field(id) ON DELETE CASCADE,
		value DOUBLE PRECISION NOT NULL,
		entry_date TEXT NOT NULL,
		UNIQUE (entity_id, field_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_entry_number_field_id ON entry_number(field_id)`,

	`CREATE TABLE IF NOT EXISTS entry_bool (
		id TEXT PRIMARY KEY,
		entity_id TEXT NOT NULL REFERENCES entity(id) ON DELETE CASCADE,
		field_id TEXT NOT NULL REFERENCES field(id) ON DELETE CASCADE,
		value BOOLEAN NOT NULL,
		entry_date TEXT NOT NULL,
		UNIQUE (entity_id, field_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_entry_bool_field_id ON entry_bool(field_id)`,

	`CREATE TABLE IF NOT EXISTS entry_text (
		id TEXT PRIMARY KEY,
		entity_id TEXT NOT NULL REFERENCES entity(id) ON DELETE CASCADE,
		field_id TEXT NOT NULL REFERENCES field(id) ON DELETE CASCADE,
		value TEXT NOT NULL,
		entry_date TEXT NOT NULL,
		UNIQUE (entity_id, field_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_entry_text_field_id ON entry_text(field_id)`,
}

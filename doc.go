// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the fieldbook API server.

Fieldbook is an inventory and observation service. Users define a schema
of categories, asset groups and typed fields at runtime, record values for
individual entities, and query them with a small DSL or in plain English.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=fieldbook.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

A .env file in the working directory is loaded if present.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file path or PostgreSQL connection string

Optional settings:

  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - PORT (-p): Server port (default: 3318)
  - LOG_JSON (--log-json): JSON logs instead of console output
  - CORS_ORIGIN: Allowed origin, sent with credentials (default: "*")
  - OPENAI_API_KEY (--openai-key): Enables natural-language queries
  - OPENAI_BASE_URL, OPENAI_MODEL (--openai-model): Completion endpoint
  - TRANSLATE_TIMEOUT (--translate-timeout), TRANSLATE_RPS: Translation limits

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (catalog, entities, queries)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON and error helpers
  - catalog: Categories, groups and field definitions
  - store: Typed entry storage and value coercion
  - dsl: Query language parser
  - query: Query execution and consolidated entity views
  - nlq: Natural-language to DSL translation
  - models: Domain, request and response types
  - apperr: Error kinds and their HTTP mapping
  - logger: Structured logging
  - db: Connections and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main

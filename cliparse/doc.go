// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Postgres connection string or SQLite file (required)
  - DatabaseType: "sqlite" (default) or "postgres"
  - LogJSON: JSON logs instead of console output
  - CORSOrigin: Allowed origin; empty echoes the request origin
  - OpenAIKey, OpenAIBaseURL, OpenAIModel: natural-language translation
  - TranslateTimeout, TranslateRPS, TranslateBurst: limits on translation calls

# CLI Flags

	-p                 Server port
	-d                 Database URL
	-t                 Database type
	-log-json          JSON logging
	-env               Path to a .env file
	-openai-key        OpenAI API key
	-openai-model      Completion model
	-translate-timeout Timeout for one translation call

# Environment Variables

Flags fall back to environment variables:

	PORT              → -p
	DATABASE_URL      → -d
	DATABASE_TYPE     → -t
	LOG_JSON          → -log-json
	OPENAI_API_KEY    → -openai-key
	OPENAI_MODEL      → -openai-model
	TRANSLATE_TIMEOUT → -translate-timeout
	CORS_ORIGIN, OPENAI_BASE_URL, TRANSLATE_RPS (env only)

A .env file (./.env, or the -env path) is loaded first with godotenv. It
never overrides variables that are already set.

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing or malformed:

  - DATABASE_URL must be provided
  - PORT, LOG_JSON, TRANSLATE_TIMEOUT and TRANSLATE_RPS must parse

OPENAI_API_KEY is optional. Without it the natural-language endpoint
answers with an upstream translation error.

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(ctx, db.Dialect(cfg.DatabaseType), cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(conn, cfg)
*/
package cliparse

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package nlq translates free-text questions into DSL queries.

A Translator sends a fixed instruction prompt plus a live listing of the
schema (categories, groups, "group.field (Type)") to a Completer and keeps
the first non-empty line of the answer. Client is a Completer for any
OpenAI-compatible chat completions endpoint.

The generated text is never trusted: Ask hands it to the same parser and
engine that serve hand-typed DSL, so an invented group fails with NotFound
exactly like a typo.

# Limits

Each translation runs under a timeout and a token-bucket rate limit
(golang.org/x/time/rate). Timeouts, limiter waits that cannot finish, HTTP
failures, empty completions and a missing API key are all
apperr.KindUpstreamTranslation.
*/
package nlq

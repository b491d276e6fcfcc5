// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package nlq

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/danielhkuo/fieldbook/apperr"
	"github.com/danielhkuo/fieldbook/dsl"
	"github.com/danielhkuo/fieldbook/logger"
	"github.com/danielhkuo/fieldbook/models"
	"golang.org/x/time/rate"
)

// Runner executes DSL text. *query.Engine satisfies it.
type Runner interface {
	RunDSL(ctx context.Context, text string) (models.QueryResponse, error)
}

// Translator turns free text into DSL through a Completer. Its output is
// untrusted and always goes back through the parser and the engine.
type Translator struct {
	completer Completer
	schema    SchemaLister
	limiter   *rate.Limiter
	timeout   time.Duration
}

// TranslatorConfig bounds calls to the completion service.
type TranslatorConfig struct {
	Timeout time.Duration
	RPS     float64
	Burst   int
}

// NewTranslator builds a Translator. A nil completer makes every call fail
// with an upstream translation error.
func NewTranslator(c Completer, schema SchemaLister, cfg TranslatorConfig) *Translator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &Translator{
		completer: c,
		schema:    schema,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		timeout:   cfg.Timeout,
	}
}

// Translate returns one line of DSL for text. The line is checked for
// syntax only.
func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperr.New(apperr.KindInvalid, "query is required")
	}
	if t.completer == nil {
		return "", errors.WithHint(
			apperr.New(apperr.KindUpstreamTranslation, "natural-language translation is not configured"),
			"set OPENAI_API_KEY",
		)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if err := t.limiter.Wait(ctx); err != nil {
		return "", apperr.Wrap(err, apperr.KindUpstreamTranslation, "translation rate limit")
	}

	sc, err := LoadContext(ctx, t.schema)
	if err != nil {
		return "", err
	}

	start := time.Now()
	out, err := t.completer.Complete(ctx, BuildPrompt(sc), text)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", apperr.Wrap(err, apperr.KindUpstreamTranslation, "translation timed out after %s", t.timeout)
		}
		return "", apperr.Wrap(err, apperr.KindUpstreamTranslation, "translation failed")
	}

	line := firstLine(out)
	if line == "" {
		return "", apperr.New(apperr.KindUpstreamTranslation, "translation service returned an empty completion")
	}

	logger.Logger.Infow("translated query",
		"text", text,
		"dsl", line,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if _, err := dsl.Parse(line); err != nil {
		return line, err
	}
	return line, nil
}

// Ask translates text and runs the result. Once translation succeeds every
// response and error carries the generated DSL.
func (t *Translator) Ask(ctx context.Context, run Runner, text string) (models.QueryResponse, error) {
	line, err := t.Translate(ctx, text)
	if err != nil {
		if line != "" {
			return models.QueryResponse{DSL: line}, apperr.WithQuery(err, line)
		}
		return models.QueryResponse{}, err
	}
	return run.RunDSL(ctx, line)
}

// firstLine returns the first non-empty line of a completion, ignoring code
// fences and stray backticks.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "```") {
			continue
		}
		line = strings.TrimSpace(strings.Trim(line, "`"))
		if line != "" {
			return line
		}
	}
	return ""
}

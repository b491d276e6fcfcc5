// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/danielhkuo/fieldbook/apperr"
	"github.com/danielhkuo/fieldbook/catalog"
	"github.com/danielhkuo/fieldbook/cliparse"
	"github.com/danielhkuo/fieldbook/middleware"
	"github.com/danielhkuo/fieldbook/nlq"
	"github.com/danielhkuo/fieldbook/query"
	"github.com/danielhkuo/fieldbook/store"
)

// QueryHandler serves the DSL and natural-language query endpoints.
type QueryHandler struct {
	db         *sql.DB
	cfg        cliparse.Config
	engine     *query.Engine
	translator *nlq.Translator
}

// NewQueryHandler wires the completion client from cfg. Without an API key
// natural-language queries fail with an upstream error.
func NewQueryHandler(db *sql.DB, cfg cliparse.Config) *QueryHandler {
	var c nlq.Completer
	if cfg.OpenAIKey != "" {
		c = nlq.NewClient(nlq.ClientConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		})
	}
	return NewQueryHandlerWithCompleter(db, cfg, c)
}

// NewQueryHandlerWithCompleter uses c for translation.
func NewQueryHandlerWithCompleter(db *sql.DB, cfg cliparse.Config, c nlq.Completer) *QueryHandler {
	cat := catalog.NewService(db)
	return &QueryHandler{
		db:     db,
		cfg:    cfg,
		engine: query.NewEngine(db, cat, store.New(db)),
		translator: nlq.NewTranslator(c, cat, nlq.TranslatorConfig{
			Timeout: cfg.TranslateTimeout,
			RPS:     cfg.TranslateRPS,
			Burst:   cfg.TranslateBurst,
		}),
	}
}

// QueryDSL handles GET /query/dsl?query=
func (h *QueryHandler) QueryDSL(w http.ResponseWriter, r *http.Request) {
	text := strings.TrimSpace(r.URL.Query().Get("query"))
	if text == "" {
		middleware.WriteError(w, apperr.New(apperr.KindInvalid, "query is required"))
		return
	}

	resp, err := h.engine.RunDSL(r.Context(), text)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// QueryNL handles GET /query/nl?query=
func (h *QueryHandler) QueryNL(w http.ResponseWriter, r *http.Request) {
	text := strings.TrimSpace(r.URL.Query().Get("query"))
	if text == "" {
		middleware.WriteError(w, apperr.New(apperr.KindInvalid, "query is required"))
		return
	}

	resp, err := h.translator.Ask(r.Context(), h.engine, text)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

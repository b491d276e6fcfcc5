// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/fieldbook/catalog"
	"github.com/danielhkuo/fieldbook/cliparse"
	"github.com/danielhkuo/fieldbook/middleware"
	"github.com/danielhkuo/fieldbook/models"
	"github.com/danielhkuo/fieldbook/query"
	"github.com/danielhkuo/fieldbook/store"
)

// EntityHandler serves entities and their entries.
type EntityHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	store  *store.Store
	engine *query.Engine
}

func NewEntityHandler(db *sql.DB, cfg cliparse.Config) *EntityHandler {
	st := store.New(db)
	return &EntityHandler{
		db:     db,
		cfg:    cfg,
		store:  st,
		engine: query.NewEngine(db, catalog.NewService(db), st),
	}
}

// ListEntities handles GET /entities
func (h *EntityHandler) ListEntities(w http.ResponseWriter, r *http.Request) {
	ents, err := h.engine.ListAllEntities(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, ents)
}

// CreateEntity handles POST /entities
func (h *EntityHandler) CreateEntity(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEntityRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if req.GroupName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "group_name is required")
		return
	}

	resp, err := h.store.CreateEntityWithEntries(r.Context(), req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// GetEntity handles GET /entities/{id}
func (h *EntityHandler) GetEntity(w http.ResponseWriter, r *http.Request) {
	ent, err := h.engine.GetEntity(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, ent)
}

// DeleteEntity handles DELETE /entities/{id}
func (h *EntityHandler) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	res, err := h.store.DeleteEntity(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.DeleteResponse{ID: id, Result: res})
}

// ReadEntry handles GET /entities/{id}/entries/{field_id}
func (h *EntityHandler) ReadEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.store.ReadEntry(r.Context(), r.PathValue("id"), r.PathValue("field_id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, entry)
}

// WriteEntry handles PUT /entities/{id}/entries/{field_id}
func (h *EntityHandler) WriteEntry(w http.ResponseWriter, r *http.Request) {
	var req models.WriteEntryRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	entry, err := h.store.WriteEntry(r.Context(), r.PathValue("id"), r.PathValue("field_id"), req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, entry)
}

// ListGroupEntities handles GET /groups/{id}/entities
// Optional field, operator and value parameters filter the group.
func (h *EntityHandler) ListGroupEntities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.engine.QueryGroup(r.Context(), r.PathValue("id"), q.Get("field"), q.Get("operator"), q.Get("value"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

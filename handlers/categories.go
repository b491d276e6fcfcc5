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
)

// CatalogHandler serves categories, groups and fields.
type CatalogHandler struct {
	db      *sql.DB
	cfg     cliparse.Config
	catalog *catalog.Service
}

func NewCatalogHandler(db *sql.DB, cfg cliparse.Config) *CatalogHandler {
	return &CatalogHandler{db: db, cfg: cfg, catalog: catalog.NewService(db)}
}

// ListCategories handles GET /categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, cats)
}

// CreateCategory handles POST /categories
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.NameRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	cat, err := h.catalog.CreateCategory(r.Context(), req.Name)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, cat)
}

// RenameCategory handles PUT /categories/{id}
func (h *CatalogHandler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "category id is required")
		return
	}

	var req models.NameRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	cat, err := h.catalog.RenameCategory(r.Context(), id, req.Name)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, cat)
}

// DeleteCategory handles DELETE /categories/{id}
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	res, err := h.catalog.DeleteCategory(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.DeleteResponse{ID: id, Result: res})
}

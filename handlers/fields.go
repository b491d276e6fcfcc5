// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/fieldbook/middleware"
	"github.com/danielhkuo/fieldbook/models"
)

// ListFields handles GET /fields
func (h *CatalogHandler) ListFields(w http.ResponseWriter, r *http.Request) {
	fields, err := h.catalog.ListFields(r.Context(), r.URL.Query().Get("group_id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, fields)
}

// GetField handles GET /fields/{id}
func (h *CatalogHandler) GetField(w http.ResponseWriter, r *http.Request) {
	f, err := h.catalog.GetField(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, f)
}

// CreateField handles POST /fields
func (h *CatalogHandler) CreateField(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFieldRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if req.GroupName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "group_name is required")
		return
	}

	f, err := h.catalog.CreateField(r.Context(), req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, f)
}

// UpdateField handles PUT /fields/{id}
func (h *CatalogHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateFieldRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	f, err := h.catalog.UpdateField(r.Context(), r.PathValue("id"), req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, f)
}

// DeleteField handles DELETE /fields/{id}
func (h *CatalogHandler) DeleteField(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	res, err := h.catalog.DeleteField(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.DeleteResponse{ID: id, Result: res})
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/fieldbook/middleware"
	"github.com/danielhkuo/fieldbook/models"
)

// ListGroups handles GET /groups
func (h *CatalogHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.catalog.ListGroups(r.Context(), r.URL.Query().Get("category_id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, groups)
}

// CreateGroup handles POST /groups
func (h *CatalogHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req models.CreateGroupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if req.CategoryName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "category_name is required")
		return
	}

	group, err := h.catalog.CreateGroup(r.Context(), req.CategoryName, req.Name)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, group)
}

// RenameGroup handles PUT /groups/{id}
func (h *CatalogHandler) RenameGroup(w http.ResponseWriter, r *http.Request) {
	var req models.NameRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	group, err := h.catalog.RenameGroup(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, group)
}

// DeleteGroup handles DELETE /groups/{id}
func (h *CatalogHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	res, err := h.catalog.DeleteGroup(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.DeleteResponse{ID: id, Result: res})
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/fieldbook/cliparse"
	"github.com/danielhkuo/fieldbook/handlers"
	"github.com/danielhkuo/fieldbook/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	return newRouter(db, cfg, handlers.NewQueryHandler(db, cfg))
}

func newRouter(db *sql.DB, cfg cliparse.Config, queryHandler *handlers.QueryHandler) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(db, cfg)
	entityHandler := handlers.NewEntityHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Categories
	mux.HandleFunc("GET /categories", middleware.WithLogging(catalogHandler.ListCategories))
	mux.HandleFunc("POST /categories", middleware.WithLogging(catalogHandler.CreateCategory))
	mux.HandleFunc("PUT /categories/{id}", middleware.WithLogging(catalogHandler.RenameCategory))
	mux.HandleFunc("DELETE /categories/{id}", middleware.WithLogging(catalogHandler.DeleteCategory))

	// Groups
	mux.HandleFunc("GET /groups", middleware.WithLogging(catalogHandler.ListGroups))
	mux.HandleFunc("POST /groups", middleware.WithLogging(catalogHandler.CreateGroup))
	mux.HandleFunc("PUT /groups/{id}", middleware.WithLogging(catalogHandler.RenameGroup))
	mux.HandleFunc("DELETE /groups/{id}", middleware.WithLogging(catalogHandler.DeleteGroup))
	mux.HandleFunc("GET /groups/{id}/entities", middleware.WithLogging(entityHandler.ListGroupEntities))

	// Fields
	mux.HandleFunc("GET /fields", middleware.WithLogging(catalogHandler.ListFields))
	mux.HandleFunc("GET /fields/{id}", middleware.WithLogging(catalogHandler.GetField))
	mux.HandleFunc("POST /fields", middleware.WithLogging(catalogHandler.CreateField))
	mux.HandleFunc("PUT /fields/{id}", middleware.WithLogging(catalogHandler.UpdateField))
	mux.HandleFunc("DELETE /fields/{id}", middleware.WithLogging(catalogHandler.DeleteField))

	// Entities and entries
	mux.HandleFunc("GET /entities", middleware.WithLogging(entityHandler.ListEntities))
	mux.HandleFunc("POST /entities", middleware.WithLogging(entityHandler.CreateEntity))
	mux.HandleFunc("GET /entities/{id}", middleware.WithLogging(entityHandler.GetEntity))
	mux.HandleFunc("DELETE /entities/{id}", middleware.WithLogging(entityHandler.DeleteEntity))
	mux.HandleFunc("GET /entities/{id}/entries/{field_id}", middleware.WithLogging(entityHandler.ReadEntry))
	mux.HandleFunc("PUT /entities/{id}/entries/{field_id}", middleware.WithLogging(entityHandler.WriteEntry))

	// Queries
	mux.HandleFunc("GET /query/dsl", middleware.WithLogging(queryHandler.QueryDSL))
	mux.HandleFunc("GET /query/nl", middleware.WithLogging(queryHandler.QueryNL))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fieldbook API v1"))
	})

	return mux
}

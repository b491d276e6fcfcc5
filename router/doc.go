// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the fieldbook API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Schema catalog:

	GET    /categories        - List categories
	POST   /categories        - Create category
	PUT    /categories/{id}   - Rename category
	DELETE /categories/{id}   - Delete category and everything under it
	GET    /groups            - List groups (?category_id=)
	POST   /groups            - Create group in a named category
	PUT    /groups/{id}       - Rename group
	DELETE /groups/{id}       - Delete group, its fields and entities
	GET    /fields            - List fields (?group_id=)
	GET    /fields/{id}       - Field with enum options
	POST   /fields            - Define field on a named group
	PUT    /fields/{id}       - Update name, units or enum options
	DELETE /fields/{id}       - Delete field and its entries

Entities:

	GET    /entities                          - Every entity across all groups
	POST   /entities                          - Create with a batch of entries
	GET    /entities/{id}                     - Consolidated attribute view
	DELETE /entities/{id}                     - Delete entity and entries
	GET    /entities/{id}/entries/{field_id}  - Read one value
	PUT    /entities/{id}/entries/{field_id}  - Record or overwrite one value
	GET    /groups/{id}/entities              - Group listing (?field=&operator=&value=)

Queries:

	GET /query/dsl?query=dairy_cows.age+>=+5
	GET /query/nl?query=cows+older+than+five

# Handler Initialization

The router creates handler instances with dependency injection:

	catalogHandler := handlers.NewCatalogHandler(db, cfg)
	entityHandler := handlers.NewEntityHandler(db, cfg)
	queryHandler := handlers.NewQueryHandler(db, cfg)

All handlers receive the database connection and configuration.
*/
package router

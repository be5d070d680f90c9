// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the routes of the voting API.

# Route Registration

NewRouter builds a Mux with every endpoint and wraps it in CORS handling:

	handler := router.NewRouter(st, cfg, page)

Mux patterns have the form "METHOD /path". A trailing {name} segment
captures the rest of the path:

	mux.HandleFunc("GET /api/voter/{id}", h)
	voterID := r.PathValue("id")

Exact routes win over wildcard routes.

# Endpoints

Queries:

	GET /api/voters
	GET /api/candidates[?sectionId=]
	GET /api/votes
	GET /api/results[?sectionId=]
	GET /api/sections
	GET /api/voter/{id}

Mutations (application/x-www-form-urlencoded bodies):

	POST /api/voter/login
	POST /api/admin/login
	POST /api/vote
	POST /api/voter/add
	POST /api/voter/delete
	POST /api/candidate/add
	POST /api/candidate/delete
	POST /api/sections/create
	POST /api/sections/delete

Health:

	GET /health

# Fallbacks

  - OPTIONS on any path: 204 with CORS headers
  - Unmatched GET: static page (/ and /index.html), else 404 "File not found"
  - Unmatched POST: 404 "Endpoint not found"
  - Any other method: 405 "Method not allowed"
*/
package router

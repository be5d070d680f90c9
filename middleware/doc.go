// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides wire handler middleware and response helpers.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /api/voters", middleware.WithLogging(handler))

Logs completion with request_id, method, path, status and duration_ms.

# CORS Middleware

Every response allows any origin. OPTIONS preflight requests get 204 with
methods GET, POST, OPTIONS and header Content-Type:

	handler := middleware.CORS(mux)

# Response Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.SuccessResponse(w, "Vote recorded successfully")
	middleware.ErrorResponse(w, http.StatusBadRequest, "Voter ID required")
	middleware.TextResponse(w, http.StatusNotFound, "Endpoint not found")

Error bodies have the shape {"success":false,"message":"..."}.

# Form Values

Read several required form fields at once:

	vals, ok := middleware.FormValues(r, "voterId", "candidateId")
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Voter ID and Candidate ID required")
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Handles X-Forwarded-For and X-Real-IP before falling back to the peer
address.
*/
package middleware

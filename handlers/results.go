// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/voting-server/cliparse"
	"github.com/danielhkuo/voting-server/middleware"
	"github.com/danielhkuo/voting-server/store"
	"github.com/danielhkuo/voting-server/wire"
)

type ResultsHandler struct {
	st  *store.Store
	cfg cliparse.Config
}

func NewResultsHandler(st *store.Store, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{st: st, cfg: cfg}
}

// GetResults handles GET /api/results[?sectionId=]
//
// Every candidate is listed. With a section filter only votes cast in that
// section are counted, but totalCandidates still covers all candidates.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *wire.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.st.Results(sectionFilter(r)))
}

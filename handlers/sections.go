// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/voting-server/cliparse"
	"github.com/danielhkuo/voting-server/middleware"
	"github.com/danielhkuo/voting-server/models"
	"github.com/danielhkuo/voting-server/store"
	"github.com/danielhkuo/voting-server/wire"
)

type SectionHandler struct {
	st  *store.Store
	cfg cliparse.Config
}

func NewSectionHandler(st *store.Store, cfg cliparse.Config) *SectionHandler {
	return &SectionHandler{st: st, cfg: cfg}
}

// ListSections handles GET /api/sections
func (h *SectionHandler) ListSections(w http.ResponseWriter, r *wire.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.SectionsResponse{Sections: h.st.Sections()})
}

// CreateSection handles POST /api/sections/create
func (h *SectionHandler) CreateSection(w http.ResponseWriter, r *wire.Request) {
	vals, ok := middleware.FormValues(r, "name", "startDate", "endDate")
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Name, start date, and end date required")
		return
	}
	description, _ := r.FormValue("description")

	id, err := h.st.CreateSection(r.Context(), models.Section{
		Name:        vals[0],
		Description: description,
		StartDate:   vals[1],
		EndDate:     vals[2],
	})
	if err != nil {
		slog.Error("failed to create section", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create section")
		return
	}

	slog.Info("section created", "section_id", id, "name", vals[0])
	middleware.JSONResponse(w, http.StatusOK, models.CreateSectionResponse{
		Success:   true,
		Message:   "Voting section created successfully",
		SectionID: id,
	})
}

// DeleteSection handles POST /api/sections/delete
// Votes cast in the section are removed with it.
func (h *SectionHandler) DeleteSection(w http.ResponseWriter, r *wire.Request) {
	raw, ok := r.FormValue("sectionId")
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Section ID required")
		return
	}

	sectionID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid section ID")
		return
	}

	err = h.st.DeleteSection(r.Context(), sectionID)
	if errors.Is(err, store.ErrSectionNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Section not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete section", "error", err, "section_id", sectionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete section")
		return
	}

	middleware.SuccessResponse(w, "Voting section deleted successfully")
}

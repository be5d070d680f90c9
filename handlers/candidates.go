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

type CandidateHandler struct {
	st  *store.Store
	cfg cliparse.Config
}

func NewCandidateHandler(st *store.Store, cfg cliparse.Config) *CandidateHandler {
	return &CandidateHandler{st: st, cfg: cfg}
}

// ListCandidates handles GET /api/candidates[?sectionId=]
func (h *CandidateHandler) ListCandidates(w http.ResponseWriter, r *wire.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.CandidatesResponse{
		Candidates: h.st.Candidates(sectionFilter(r)),
	})
}

// AddCandidate handles POST /api/candidate/add
func (h *CandidateHandler) AddCandidate(w http.ResponseWriter, r *wire.Request) {
	vals, ok := middleware.FormValues(r, "name", "party", "age", "gender")
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Name, party, age, and gender required")
		return
	}

	age, err := strconv.Atoi(vals[2])
	if err != nil || age < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid age format")
		return
	}

	// An unparsable sectionId leaves the candidate unscoped.
	var sectionID int64
	if raw, ok := r.FormValue("sectionId"); ok {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			sectionID = id
		}
	}

	id, err := h.st.AddCandidate(r.Context(), models.Candidate{
		Name:      vals[0],
		Party:     vals[1],
		Age:       age,
		Gender:    vals[3],
		SectionID: sectionID,
	})
	if err != nil {
		slog.Error("failed to add candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add candidate")
		return
	}

	slog.Info("candidate added", "candidate_id", id, "section_id", sectionID)
	middleware.JSONResponse(w, http.StatusOK, models.AddCandidateResponse{
		Success:     true,
		Message:     "Candidate added successfully",
		CandidateID: id,
	})
}

// DeleteCandidate handles POST /api/candidate/delete
func (h *CandidateHandler) DeleteCandidate(w http.ResponseWriter, r *wire.Request) {
	raw, ok := r.FormValue("candidateId")
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Candidate ID required")
		return
	}

	candidateID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid candidate ID")
		return
	}

	err = h.st.DeleteCandidate(r.Context(), candidateID)
	switch {
	case errors.Is(err, store.ErrCandidateNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	case errors.Is(err, store.ErrCandidateHasVotes):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Cannot delete candidate who has received votes")
		return
	case err != nil:
		slog.Error("failed to delete candidate", "error", err, "candidate_id", candidateID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete candidate")
		return
	}

	slog.Info("candidate deleted", "candidate_id", candidateID)
	middleware.SuccessResponse(w, "Candidate deleted successfully")
}

// sectionFilter reads the sectionId query parameter. Anything other than a
// positive integer means no filter.
func sectionFilter(r *wire.Request) int64 {
	raw, ok := r.QueryValue("sectionId")
	if !ok {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

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

type VoterHandler struct {
	st  *store.Store
	cfg cliparse.Config
}

func NewVoterHandler(st *store.Store, cfg cliparse.Config) *VoterHandler {
	return &VoterHandler{st: st, cfg: cfg}
}

// ListVoters handles GET /api/voters
func (h *VoterHandler) ListVoters(w http.ResponseWriter, r *wire.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.VotersResponse{Voters: h.st.Voters()})
}

// GetVoter handles GET /api/voter/{id}
func (h *VoterHandler) GetVoter(w http.ResponseWriter, r *wire.Request) {
	voter, err := h.st.Voter(r.PathValue("id"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voter not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoterResponse{Success: true, Voter: voter})
}

// Login handles POST /api/voter/login
func (h *VoterHandler) Login(w http.ResponseWriter, r *wire.Request) {
	voterID, ok := r.FormValue("voterId")
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Voter ID required")
		return
	}

	voter, err := h.st.Voter(voterID)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Invalid Voter ID")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoterLoginResponse{
		Success: true,
		Voter:   models.VoterIdentity{VoterID: voter.VoterID, Name: voter.Name},
	})
}

// AddVoter handles POST /api/voter/add
func (h *VoterHandler) AddVoter(w http.ResponseWriter, r *wire.Request) {
	vals, ok := middleware.FormValues(r, "voterId", "name", "age", "gender")
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Voter ID, name, age, and gender required")
		return
	}

	age, err := strconv.Atoi(vals[2])
	if err != nil || age < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid age format")
		return
	}

	err = h.st.AddVoter(r.Context(), models.Voter{
		VoterID: vals[0],
		Name:    vals[1],
		Age:     age,
		Gender:  vals[3],
	})
	if errors.Is(err, store.ErrVoterExists) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Voter ID already exists")
		return
	}
	if err != nil {
		slog.Error("failed to add voter", "error", err, "voter_id", vals[0])
		middleware.ErrorResponse(w, http.StatusBadRequest, "Voter ID, name, age, and gender required")
		return
	}

	slog.Info("voter added", "voter_id", vals[0])
	middleware.SuccessResponse(w, "Voter added successfully")
}

// DeleteVoter handles POST /api/voter/delete
func (h *VoterHandler) DeleteVoter(w http.ResponseWriter, r *wire.Request) {
	voterID, ok := r.FormValue("voterId")
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Voter ID required")
		return
	}

	err := h.st.DeleteVoter(r.Context(), voterID)
	switch {
	case errors.Is(err, store.ErrVoterNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Voter not found")
		return
	case errors.Is(err, store.ErrVoterHasVoted):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Cannot delete voter who has already voted")
		return
	case err != nil:
		slog.Error("failed to delete voter", "error", err, "voter_id", voterID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete voter")
		return
	}

	slog.Info("voter deleted", "voter_id", voterID)
	middleware.SuccessResponse(w, "Voter deleted successfully")
}

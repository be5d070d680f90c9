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

type VotingHandler struct {
	st  *store.Store
	cfg cliparse.Config
}

func NewVotingHandler(st *store.Store, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{st: st, cfg: cfg}
}

// CastVote handles POST /api/vote
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *wire.Request) {
	vals, ok := middleware.FormValues(r, "voterId", "candidateId")
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Voter ID and Candidate ID required")
		return
	}
	voterID := vals[0]

	candidateID, err := strconv.ParseInt(vals[1], 10, 64)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid candidate ID")
		return
	}

	// sectionId is optional; a bad value records the vote unscoped.
	var sectionID int64
	if raw, ok := r.FormValue("sectionId"); ok {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			sectionID = id
		}
	}

	err = h.st.CastVote(r.Context(), models.Vote{
		VoterID:     voterID,
		CandidateID: candidateID,
		SectionID:   sectionID,
	})
	switch {
	case errors.Is(err, store.ErrAlreadyVoted):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Voter has already voted")
		return
	case errors.Is(err, store.ErrVoterNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Voter not found")
		return
	case errors.Is(err, store.ErrCandidateNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	case errors.Is(err, store.ErrMissingFields):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Voter ID and Candidate ID required")
		return
	case err != nil:
		slog.Error("failed to cast vote", "error", err, "voter_id", voterID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	slog.Info("vote recorded", "voter_id", voterID, "candidate_id", candidateID, "section_id", sectionID)
	middleware.SuccessResponse(w, "Vote recorded successfully")
}

// ListVotes handles GET /api/votes
func (h *VotingHandler) ListVotes(w http.ResponseWriter, r *wire.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.VotesResponse{Votes: h.st.Votes()})
}

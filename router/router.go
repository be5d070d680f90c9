// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"github.com/danielhkuo/voting-server/auth"
	"github.com/danielhkuo/voting-server/cliparse"
	"github.com/danielhkuo/voting-server/handlers"
	"github.com/danielhkuo/voting-server/middleware"
	"github.com/danielhkuo/voting-server/store"
	"github.com/danielhkuo/voting-server/wire"
)

// NewRouter builds the full routing table wrapped in CORS handling. page
// may be nil, in which case / answers 500.
func NewRouter(st *store.Store, cfg cliparse.Config, page handlers.Page) wire.Handler {
	mux := NewMux()

	// Initialize handlers
	voterHandler := handlers.NewVoterHandler(st, cfg)
	candidateHandler := handlers.NewCandidateHandler(st, cfg)
	sectionHandler := handlers.NewSectionHandler(st, cfg)
	votingHandler := handlers.NewVotingHandler(st, cfg)
	resultsHandler := handlers.NewResultsHandler(st, cfg)
	adminHandler := handlers.NewAdminHandler(auth.NewCredentials(cfg))
	staticHandler := handlers.NewStaticHandler(page)

	// Health check
	mux.HandleFunc("GET /health", handlers.Health)

	// Read-only queries
	mux.HandleFunc("GET /api/voters", middleware.WithLogging(voterHandler.ListVoters))
	mux.HandleFunc("GET /api/candidates", middleware.WithLogging(candidateHandler.ListCandidates))
	mux.HandleFunc("GET /api/votes", middleware.WithLogging(votingHandler.ListVotes))
	mux.HandleFunc("GET /api/results", middleware.WithLogging(resultsHandler.GetResults))
	mux.HandleFunc("GET /api/sections", middleware.WithLogging(sectionHandler.ListSections))
	mux.HandleFunc("GET /api/voter/{id}", middleware.WithLogging(voterHandler.GetVoter))

	// Logins
	mux.HandleFunc("POST /api/voter/login", middleware.WithLogging(voterHandler.Login))
	mux.HandleFunc("POST /api/admin/login", middleware.WithLogging(adminHandler.Login))

	// Voting
	mux.HandleFunc("POST /api/vote", middleware.WithLogging(votingHandler.CastVote))

	// Administration
	mux.HandleFunc("POST /api/voter/add", middleware.WithLogging(voterHandler.AddVoter))
	mux.HandleFunc("POST /api/voter/delete", middleware.WithLogging(voterHandler.DeleteVoter))
	mux.HandleFunc("POST /api/candidate/add", middleware.WithLogging(candidateHandler.AddCandidate))
	mux.HandleFunc("POST /api/candidate/delete", middleware.WithLogging(candidateHandler.DeleteCandidate))
	mux.HandleFunc("POST /api/sections/create", middleware.WithLogging(sectionHandler.CreateSection))
	mux.HandleFunc("POST /api/sections/delete", middleware.WithLogging(sectionHandler.DeleteSection))

	// Static page for everything else
	mux.HandleFallback(middleware.WithLogging(staticHandler.Serve))

	return middleware.CORS(mux)
}

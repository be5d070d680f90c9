// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the request handlers for the voting server API.

# Handler Types

Each handler is a struct holding the shared store and config:

  - VoterHandler: voter registry, lookup, login and removal
  - CandidateHandler: candidate registry and removal
  - SectionHandler: voting sections (rounds) and cascading removal
  - VotingHandler: vote casting and the vote ledger
  - ResultsHandler: per-candidate tallies
  - AdminHandler: admin login against the configured credentials
  - StaticHandler: the single-page UI

Handlers are created via constructor functions:

	votingHandler := handlers.NewVotingHandler(st, cfg)

# Request Bodies

POST bodies are form-urlencoded. Fields are read with
middleware.FormValues; a field that is absent or empty counts as missing.

	POST /api/vote  voterId=V1&candidateId=2&sectionId=1

# Responses

Mutations answer with {"success": bool, "message": string}. Reads answer
with bare JSON arrays or the Results object. Error messages are part of
the client contract and must not change.

# One Vote Per Voter

CastVote relies on store.CastVote to check and record the vote under one
lock, so concurrent requests for the same voter produce exactly one 200.
*/
package handlers

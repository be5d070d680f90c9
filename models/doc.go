// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain and response types for the API.

# Domain Types

  - Voter: externally assigned voterId, name, age, gender
  - Candidate: server-assigned id, party, optional sectionId
  - Section: a voting round that scopes candidates and votes
  - Vote: one per voter, keyed by voterId

VoterStatus and Section.VoteCount are derived at read time from the vote
collection; neither is persisted.

# Response Types

JSON bodies use camelCase keys:

  - VotersResponse, CandidatesResponse, VotesResponse, SectionsResponse
  - VoterResponse, VoterLoginResponse
  - AddCandidateResponse (candidateId), CreateSectionResponse (sectionId)
  - Results: per-candidate tallies plus totalVotes and totalCandidates
  - StatusResponse: {success, message}, used for every mutation and error

# Constants

	StatusActive  = "Active"
	UnknownGender = "Unknown"
*/
package models

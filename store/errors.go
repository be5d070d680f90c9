package store

import "errors"

// Domain outcomes returned by Store operations.
var (
	ErrMissingFields = errors.New("required fields missing")

	ErrVoterExists   = errors.New("voter already exists")
	ErrVoterNotFound = errors.New("voter not found")
	ErrVoterHasVoted = errors.New("voter has already voted")
	ErrAlreadyVoted  = errors.New("voter has already cast a vote")

	ErrCandidateNotFound = errors.New("candidate not found")
	ErrCandidateHasVotes = errors.New("candidate has received votes")

	ErrSectionNotFound = errors.New("section not found")
)

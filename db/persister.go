// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"
	"io"

	"github.com/danielhkuo/voting-server/cliparse"
	"github.com/danielhkuo/voting-server/models"
)

// Collection names one of the four persisted entity kinds.
type Collection string

const (
	CollectionVoters     Collection = "voters"
	CollectionCandidates Collection = "candidates"
	CollectionSections   Collection = "sections"
	CollectionVotes      Collection = "votes"
)

// Snapshot is the full persisted state as read at startup.
type Snapshot struct {
	Voters     []models.Voter
	Candidates []models.Candidate
	Sections   []models.Section
	Votes      []models.Vote
}

// Persister loads and saves whole-collection snapshots.
// Each Save call replaces everything previously stored for that collection.
type Persister interface {
	Load(ctx context.Context) (Snapshot, error)
	SaveVoters(ctx context.Context, voters []models.Voter) error
	SaveCandidates(ctx context.Context, candidates []models.Candidate) error
	SaveSections(ctx context.Context, sections []models.Section) error
	SaveVotes(ctx context.Context, votes []models.Vote) error
	io.Closer
}

// Open returns the Persister selected by cfg.Storage.
func Open(cfg cliparse.Config) (Persister, error) {
	switch cfg.Storage {
	case cliparse.StorageFile, "":
		return NewFileStore(cfg.DataDir)
	case cliparse.StorageSQLite:
		return OpenSQL(DriverSQLite, cfg.DatabaseURL)
	case cliparse.StoragePostgres:
		return OpenSQL(DriverPostgres, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}

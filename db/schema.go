// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

const schema = `
-- Voters
CREATE TABLE IF NOT EXISTS voter (
    voter_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    age INTEGER NOT NULL DEFAULT 0,
    gender TEXT NOT NULL
);

-- Candidates (section_id 0 = unscoped)
CREATE TABLE IF NOT EXISTS candidate (
    id BIGINT PRIMARY KEY,
    name TEXT NOT NULL,
    party TEXT NOT NULL,
    age INTEGER NOT NULL DEFAULT 0,
    gender TEXT NOT NULL,
    section_id BIGINT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_candidate_section_id ON candidate(section_id);

-- Voting sections
CREATE TABLE IF NOT EXISTS voting_section (
    id BIGINT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    start_date TEXT NOT NULL DEFAULT '',
    end_date TEXT NOT NULL DEFAULT ''
);

-- Votes, one per voter
CREATE TABLE IF NOT EXISTS vote (
    voter_id TEXT PRIMARY KEY,
    candidate_id BIGINT NOT NULL,
    section_id BIGINT NOT NULL DEFAULT 0,
    cast_at TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_vote_section_id ON vote(section_id);
`

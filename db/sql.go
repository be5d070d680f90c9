// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/voting-server/models"
)

// database/sql driver names
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQLStore keeps the four collections in SQL tables. Each save replaces the
// table contents inside one transaction.
type SQLStore struct {
	db     *sql.DB
	driver string
	mu     map[Collection]*sync.Mutex
}

// OpenSQL connects, verifies the connection and creates the schema.
func OpenSQL(driver, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database URL required for %s storage", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := CreateSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}
	slog.Info("database schema ready", "driver", driver)

	return NewSQLStore(conn, driver), nil
}

// NewSQLStore wraps an open connection whose schema already exists.
func NewSQLStore(conn *sql.DB, driver string) *SQLStore {
	return &SQLStore{
		db:     conn,
		driver: driver,
		mu: map[Collection]*sync.Mutex{
			CollectionVoters:     {},
			CollectionCandidates: {},
			CollectionSections:   {},
			CollectionVotes:      {},
		},
	}
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	rows, err := s.db.QueryContext(ctx, `SELECT voter_id, name, age, gender FROM voter ORDER BY voter_id`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to query voters: %w", err)
	}
	for rows.Next() {
		var v models.Voter
		if err := rows.Scan(&v.VoterID, &v.Name, &v.Age, &v.Gender); err != nil {
			rows.Close()
			return Snapshot{}, fmt.Errorf("failed to scan voter: %w", err)
		}
		snap.Voters = append(snap.Voters, v)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `
		SELECT id, name, party, age, gender, section_id
		FROM candidate
		ORDER BY id
	`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to query candidates: %w", err)
	}
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Party, &c.Age, &c.Gender, &c.SectionID); err != nil {
			rows.Close()
			return Snapshot{}, fmt.Errorf("failed to scan candidate: %w", err)
		}
		snap.Candidates = append(snap.Candidates, c)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `
		SELECT id, name, description, start_date, end_date
		FROM voting_section
		ORDER BY id
	`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to query sections: %w", err)
	}
	for rows.Next() {
		sec := models.Section{Status: models.StatusActive}
		if err := rows.Scan(&sec.ID, &sec.Name, &sec.Description, &sec.StartDate, &sec.EndDate); err != nil {
			rows.Close()
			return Snapshot{}, fmt.Errorf("failed to scan section: %w", err)
		}
		snap.Sections = append(snap.Sections, sec)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `
		SELECT voter_id, candidate_id, section_id, cast_at
		FROM vote
		ORDER BY voter_id
	`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.VoterID, &v.CandidateID, &v.SectionID, &v.Timestamp); err != nil {
			return Snapshot{}, fmt.Errorf("failed to scan vote: %w", err)
		}
		snap.Votes = append(snap.Votes, v)
	}

	return snap, rows.Err()
}

func (s *SQLStore) SaveVoters(ctx context.Context, voters []models.Voter) error {
	args := make([][]any, 0, len(voters))
	for _, v := range voters {
		args = append(args, []any{v.VoterID, v.Name, v.Age, v.Gender})
	}
	return s.replace(ctx, CollectionVoters, "voter",
		`INSERT INTO voter (voter_id, name, age, gender) VALUES (?, ?, ?, ?)`, args)
}

func (s *SQLStore) SaveCandidates(ctx context.Context, candidates []models.Candidate) error {
	args := make([][]any, 0, len(candidates))
	for _, c := range candidates {
		args = append(args, []any{c.ID, c.Name, c.Party, c.Age, c.Gender, c.SectionID})
	}
	return s.replace(ctx, CollectionCandidates, "candidate",
		`INSERT INTO candidate (id, name, party, age, gender, section_id) VALUES (?, ?, ?, ?, ?, ?)`, args)
}

func (s *SQLStore) SaveSections(ctx context.Context, sections []models.Section) error {
	args := make([][]any, 0, len(sections))
	for _, sec := range sections {
		args = append(args, []any{sec.ID, sec.Name, sec.Description, sec.StartDate, sec.EndDate})
	}
	return s.replace(ctx, CollectionSections, "voting_section",
		`INSERT INTO voting_section (id, name, description, start_date, end_date) VALUES (?, ?, ?, ?, ?)`, args)
}

func (s *SQLStore) SaveVotes(ctx context.Context, votes []models.Vote) error {
	args := make([][]any, 0, len(votes))
	for _, v := range votes {
		args = append(args, []any{v.VoterID, v.CandidateID, v.SectionID, v.Timestamp})
	}
	return s.replace(ctx, CollectionVotes, "vote",
		`INSERT INTO vote (voter_id, candidate_id, section_id, cast_at) VALUES (?, ?, ?, ?)`, args)
}

// replace deletes every row of table and inserts rows in one transaction.
func (s *SQLStore) replace(ctx context.Context, c Collection, table, insert string, rows [][]any) error {
	s.mu[c].Lock()
	defer s.mu[c].Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(insert))
	if err != nil {
		return fmt.Errorf("failed to prepare insert into %s: %w", table, err)
	}
	defer stmt.Close()

	for _, args := range rows {
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", table, err)
	}

	slog.Debug("collection saved", "collection", c, "records", len(rows))
	return nil
}

// rebind rewrites ? placeholders as $1, $2, ... for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/voting-server/models"
)

// File names inside the data directory
const (
	VotersFile     = "voters.csv"
	CandidatesFile = "candidates.csv"
	SectionsFile   = "sections.csv"
	VotesFile      = "votes.csv"
)

// FileStore keeps each collection in its own CSV file.
type FileStore struct {
	dir string

	// one writer per file at a time
	mu map[Collection]*sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{
		dir: dir,
		mu: map[Collection]*sync.Mutex{
			CollectionVoters:     {},
			CollectionCandidates: {},
			CollectionSections:   {},
			CollectionVotes:      {},
		},
	}, nil
}

// Dir returns the data directory.
func (fs *FileStore) Dir() string {
	return fs.dir
}

func (fs *FileStore) Close() error {
	return nil
}

// Load reads all four files. An absent file yields an empty collection.
func (fs *FileStore) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	rows, err := fs.readRecords(CollectionVoters, VotersFile)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Voters = parseVoters(rows)

	rows, err = fs.readRecords(CollectionCandidates, CandidatesFile)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Candidates = parseCandidates(rows)

	rows, err = fs.readRecords(CollectionVotes, VotesFile)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Votes = parseVotes(rows)

	rows, err = fs.readRecords(CollectionSections, SectionsFile)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Sections = parseSections(rows)

	return snap, nil
}

func (fs *FileStore) SaveVoters(ctx context.Context, voters []models.Voter) error {
	records := make([][]string, 0, len(voters))
	for _, v := range voters {
		records = append(records, []string{v.VoterID, v.Name, strconv.Itoa(v.Age), v.Gender})
	}
	return fs.writeRecords(CollectionVoters, VotersFile, records)
}

func (fs *FileStore) SaveCandidates(ctx context.Context, candidates []models.Candidate) error {
	records := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		records = append(records, []string{
			formatID(c.ID), c.Name, c.Party, strconv.Itoa(c.Age), c.Gender, formatID(c.SectionID),
		})
	}
	return fs.writeRecords(CollectionCandidates, CandidatesFile, records)
}

func (fs *FileStore) SaveSections(ctx context.Context, sections []models.Section) error {
	records := make([][]string, 0, len(sections))
	for _, s := range sections {
		records = append(records, []string{formatID(s.ID), s.Name, s.Description, s.StartDate, s.EndDate})
	}
	return fs.writeRecords(CollectionSections, SectionsFile, records)
}

func (fs *FileStore) SaveVotes(ctx context.Context, votes []models.Vote) error {
	records := make([][]string, 0, len(votes))
	for _, v := range votes {
		records = append(records, []string{v.VoterID, formatID(v.CandidateID), formatID(v.SectionID), v.Timestamp})
	}
	return fs.writeRecords(CollectionVotes, VotesFile, records)
}

func (fs *FileStore) readRecords(c Collection, name string) ([][]string, error) {
	fs.mu[c].Lock()
	defer fs.mu[c].Unlock()

	path := filepath.Join(fs.dir, name)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("no existing file found, starting fresh", "collection", c, "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			slog.Warn("skipping malformed record", "collection", c, "line", perr.Line, "error", err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// writeRecords replaces the file via a temp file and rename.
func (fs *FileStore) writeRecords(c Collection, name string, records [][]string) error {
	fs.mu[c].Lock()
	defer fs.mu[c].Unlock()

	tmp, err := os.CreateTemp(fs.dir, name+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}

	path := filepath.Join(fs.dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}

	if info, err := os.Stat(path); err == nil {
		slog.Debug("collection saved",
			"collection", c,
			"records", len(records),
			"size", humanize.Bytes(uint64(info.Size())),
		)
	}
	return nil
}

// Record parsing. Older files carry fewer fields; missing ones are defaulted
// and unparsable numbers become 0.

func parseVoters(rows [][]string) []models.Voter {
	voters := make([]models.Voter, 0, len(rows))
	for _, parts := range rows {
		switch {
		case len(parts) >= 4:
			voters = append(voters, models.Voter{
				VoterID: parts[0],
				Name:    parts[1],
				Age:     atoi(parts[2]),
				Gender:  parts[3],
			})
		case len(parts) >= 2:
			voters = append(voters, models.Voter{
				VoterID: parts[0],
				Name:    parts[1],
				Gender:  models.UnknownGender,
			})
		}
	}
	return voters
}

func parseCandidates(rows [][]string) []models.Candidate {
	candidates := make([]models.Candidate, 0, len(rows))
	for _, parts := range rows {
		if len(parts) < 3 {
			continue
		}
		id, ok := parseID(parts[0])
		if !ok {
			slog.Warn("skipping candidate with invalid id", "id", parts[0])
			continue
		}
		c := models.Candidate{
			ID:     id,
			Name:   parts[1],
			Party:  parts[2],
			Gender: models.UnknownGender,
		}
		if len(parts) >= 4 {
			c.Age = atoi(parts[3])
		}
		if len(parts) >= 5 {
			c.Gender = parts[4]
		}
		if len(parts) >= 6 {
			c.SectionID = atoi64(parts[5])
		}
		candidates = append(candidates, c)
	}
	return candidates
}

func parseVotes(rows [][]string) []models.Vote {
	votes := make([]models.Vote, 0, len(rows))
	for _, parts := range rows {
		if len(parts) < 3 {
			continue
		}
		v := models.Vote{
			VoterID:     parts[0],
			CandidateID: atoi64(parts[1]),
		}
		if len(parts) >= 4 {
			v.SectionID = atoi64(parts[2])
			v.Timestamp = parts[3]
		} else {
			// old layout: voterId,candidateId,timestamp
			v.Timestamp = parts[2]
		}
		votes = append(votes, v)
	}
	return votes
}

func parseSections(rows [][]string) []models.Section {
	sections := make([]models.Section, 0, len(rows))
	for _, parts := range rows {
		if len(parts) < 2 {
			continue
		}
		id, ok := parseID(parts[0])
		if !ok {
			slog.Warn("skipping section with invalid id", "id", parts[0])
			continue
		}
		s := models.Section{
			ID:     id,
			Name:   parts[1],
			Status: models.StatusActive,
		}
		if len(parts) >= 3 {
			s.Description = parts[2]
		}
		if len(parts) >= 4 {
			s.StartDate = parts[3]
		}
		if len(parts) >= 5 {
			s.EndDate = parts[4]
		}
		sections = append(sections, s)
	}
	return sections
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func atoi64(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseID(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/danielhkuo/voting-server/cliparse"
	"github.com/danielhkuo/voting-server/db"
	"github.com/danielhkuo/voting-server/models"
	"github.com/danielhkuo/voting-server/store"
	"github.com/danielhkuo/voting-server/wire"
)

// MemPersister is an in-memory db.Persister that records every save.
type MemPersister struct {
	mu    sync.Mutex
	snap  db.Snapshot
	saves map[db.Collection]int
	Err   error // returned from every Save when set
}

func NewMemPersister(seed db.Snapshot) *MemPersister {
	return &MemPersister{snap: seed, saves: make(map[db.Collection]int)}
}

func (m *MemPersister) Load(context.Context) (db.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, nil
}

func (m *MemPersister) SaveVoters(_ context.Context, v []models.Voter) error {
	return m.save(db.CollectionVoters, func() { m.snap.Voters = slices.Clone(v) })
}

func (m *MemPersister) SaveCandidates(_ context.Context, c []models.Candidate) error {
	return m.save(db.CollectionCandidates, func() { m.snap.Candidates = slices.Clone(c) })
}

func (m *MemPersister) SaveSections(_ context.Context, s []models.Section) error {
	return m.save(db.CollectionSections, func() { m.snap.Sections = slices.Clone(s) })
}

func (m *MemPersister) SaveVotes(_ context.Context, v []models.Vote) error {
	return m.save(db.CollectionVotes, func() { m.snap.Votes = slices.Clone(v) })
}

func (m *MemPersister) Close() error { return nil }

func (m *MemPersister) save(c db.Collection, apply func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves[c]++
	if m.Err != nil {
		return m.Err
	}
	apply()
	return nil
}

// Saves returns how many times collection c was written.
func (m *MemPersister) Saves(c db.Collection) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves[c]
}

// Snapshot returns the last state written.
func (m *MemPersister) Snapshot() db.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// SetupTestStore creates an empty store backed by a MemPersister.
func SetupTestStore(t *testing.T) (*store.Store, *MemPersister) {
	t.Helper()

	p := NewMemPersister(db.Snapshot{})
	st, err := store.New(context.Background(), p)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	return st, p
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	cfg := cliparse.DefaultConfig()
	cfg.Port = 18080
	return cfg
}

// AddTestVoter registers a voter directly in the store
func AddTestVoter(t *testing.T, st *store.Store, voterID, name string) {
	t.Helper()

	err := st.AddVoter(context.Background(), models.Voter{VoterID: voterID, Name: name, Age: 30, Gender: "F"})
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}
}

// AddTestCandidate adds a candidate and returns its ID
func AddTestCandidate(t *testing.T, st *store.Store, name, party string, sectionID int64) int64 {
	t.Helper()

	id, err := st.AddCandidate(context.Background(), models.Candidate{
		Name: name, Party: party, Age: 40, Gender: "F", SectionID: sectionID,
	})
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}
	return id
}

// CreateTestSection creates a section and returns its ID
func CreateTestSection(t *testing.T, st *store.Store, name string) int64 {
	t.Helper()

	id, err := st.CreateSection(context.Background(), models.Section{
		Name: name, StartDate: "2025-01-01", EndDate: "2025-01-31",
	})
	if err != nil {
		t.Fatalf("Failed to create test section: %v", err)
	}
	return id
}

// CastTestVote records a vote directly in the store
func CastTestVote(t *testing.T, st *store.Store, voterID string, candidateID, sectionID int64) {
	t.Helper()

	err := st.CastVote(context.Background(), models.Vote{VoterID: voterID, CandidateID: candidateID, SectionID: sectionID})
	if err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}
}

// MakeRequest creates a wire request. A non-nil form is sent as an
// application/x-www-form-urlencoded body.
func MakeRequest(method, target string, form map[string]string) *wire.Request {
	var body []byte
	if form != nil {
		values := url.Values{}
		for k, v := range form {
			values.Set(k, v)
		}
		body = []byte(values.Encode())
	}

	req := wire.NewRequest(method, target, body)
	if form != nil {
		req.Headers["content-type"] = "application/x-www-form-urlencoded"
		req.Headers["content-length"] = strconv.Itoa(len(body))
	}
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertMessage checks the {success,message} body of a response
func AssertMessage(t *testing.T, w *httptest.ResponseRecorder, success bool, message string) {
	t.Helper()
	var resp models.StatusResponse
	AssertJSON(t, w, &resp)
	if resp.Success != success {
		t.Errorf("Expected success=%v, got %v", success, resp.Success)
	}
	if resp.Message != message {
		t.Errorf("Expected message %q, got %q", message, resp.Message)
	}
}

package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/voting-server/cliparse"
	"github.com/danielhkuo/voting-server/models"
)

func openSQLite(t *testing.T) *SQLStore {
	t.Helper()
	s, err := OpenSQL(DriverSQLite, filepath.Join(t.TempDir(), "voting.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "voting.db")
	s, err := OpenSQL(DriverSQLite, path)
	require.NoError(t, err)

	voters := []models.Voter{
		{VoterID: "V1", Name: "Ann", Age: 30, Gender: "F"},
		{VoterID: "V2", Name: "Bob", Age: 41, Gender: "M"},
	}
	candidates := []models.Candidate{
		{ID: 1, Name: "Alice", Party: "PartyA", Age: 50, Gender: "F", SectionID: 1},
		{ID: 2, Name: "Carl", Party: "PartyB", Age: 45, Gender: "M"},
	}
	sections := []models.Section{
		{ID: 1, Name: "Mayor", Description: "City mayor", StartDate: "2025-01-01", EndDate: "2025-01-31", Status: models.StatusActive},
	}
	votes := []models.Vote{
		{VoterID: "V1", CandidateID: 1, SectionID: 1, Timestamp: "2025-01-02T10:00:00Z"},
	}

	require.NoError(t, s.SaveVoters(ctx, voters))
	require.NoError(t, s.SaveCandidates(ctx, candidates))
	require.NoError(t, s.SaveSections(ctx, sections))
	require.NoError(t, s.SaveVotes(ctx, votes))
	require.NoError(t, s.Close())

	// Reopen to make sure the data reached the file.
	s2, err := OpenSQL(DriverSQLite, path)
	require.NoError(t, err)
	defer s2.Close()

	snap, err := s2.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, voters, snap.Voters)
	assert.Equal(t, candidates, snap.Candidates)
	assert.Equal(t, sections, snap.Sections)
	assert.Equal(t, votes, snap.Votes)
}

func TestSQLStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	require.NoError(t, s.SaveVotes(ctx, []models.Vote{
		{VoterID: "V1", CandidateID: 1},
		{VoterID: "V2", CandidateID: 1},
	}))
	require.NoError(t, s.SaveVotes(ctx, []models.Vote{{VoterID: "V2", CandidateID: 1}}))

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Votes, 1)
	assert.Equal(t, "V2", snap.Votes[0].VoterID)

	require.NoError(t, s.SaveVotes(ctx, nil))
	snap, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Votes)
}

func TestSQLStore_SchemaIdempotent(t *testing.T) {
	s := openSQLite(t)
	assert.NoError(t, CreateSchema(s.db))
}

func TestOpenSQL_MissingDSN(t *testing.T) {
	_, err := OpenSQL(DriverSQLite, "")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	query := `INSERT INTO vote (voter_id, candidate_id) VALUES (?, ?)`

	pg := &SQLStore{driver: DriverPostgres}
	assert.Equal(t, `INSERT INTO vote (voter_id, candidate_id) VALUES ($1, $2)`, pg.rebind(query))

	lite := &SQLStore{driver: DriverSQLite}
	assert.Equal(t, query, lite.rebind(query))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	p, err := Open(cliparse.Config{Storage: cliparse.StorageFile, DataDir: dir})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, p)
	p.Close()

	p, err = Open(cliparse.Config{Storage: cliparse.StorageSQLite, DatabaseURL: filepath.Join(dir, "v.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, p)
	p.Close()

	_, err = Open(cliparse.Config{Storage: "mongo"})
	assert.Error(t, err)
}

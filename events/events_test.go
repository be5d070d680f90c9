package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subjects []string
	payloads [][]byte
	err      error
	drained  bool
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subj)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func TestNATSPublisher_Publish(t *testing.T) {
	fc := &fakeConn{}
	p := &NATSPublisher{nc: fc}

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	err := p.Publish(context.Background(), Event{Type: VoteCast, VoterID: "V1", CandidateID: 2, SectionID: 1, At: at})
	require.NoError(t, err)

	require.Len(t, fc.subjects, 1)
	assert.Equal(t, "voting.vote.cast", fc.subjects[0])

	var got map[string]any
	require.NoError(t, json.Unmarshal(fc.payloads[0], &got))
	assert.Equal(t, "vote.cast", got["type"])
	assert.Equal(t, "V1", got["voterId"])
	assert.EqualValues(t, 2, got["candidateId"])
	assert.EqualValues(t, 1, got["sectionId"])
	assert.Equal(t, "2025-03-01T12:00:00Z", got["at"])
}

func TestNATSPublisher_OmitsEmptyFields(t *testing.T) {
	fc := &fakeConn{}
	p := &NATSPublisher{nc: fc}

	require.NoError(t, p.Publish(context.Background(), Event{Type: SectionCreated, SectionID: 4}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(fc.payloads[0], &got))
	assert.NotContains(t, got, "voterId")
	assert.NotContains(t, got, "candidateId")
	assert.Equal(t, "voting.section.created", fc.subjects[0])
}

func TestNATSPublisher_PropagatesError(t *testing.T) {
	p := &NATSPublisher{nc: &fakeConn{err: errors.New("connection closed")}}
	assert.Error(t, p.Publish(context.Background(), Event{Type: VoterAdded}))
}

func TestNATSPublisher_CloseDrains(t *testing.T) {
	fc := &fakeConn{}
	p := &NATSPublisher{nc: fc}
	require.NoError(t, p.Close())
	assert.True(t, fc.drained)
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Publish(context.Background(), Event{Type: VoteCast}))
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danielhkuo/voting-server/db"
	"github.com/danielhkuo/voting-server/events"
	"github.com/danielhkuo/voting-server/models"
)

// Observer receives notifications about store activity, e.g. for metrics.
type Observer interface {
	VoteCast(sectionID int64)
	PersistFailed(collection db.Collection)
}

type Option func(*Store)

// WithPublisher sends domain events to p after each successful mutation.
func WithPublisher(p events.Publisher) Option {
	return func(s *Store) { s.publisher = p }
}

func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

// WithClock overrides the time source used for vote timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the single owner of the election state. Handlers reach the
// collections only through its methods.
type Store struct {
	mu         sync.RWMutex
	voters     map[string]models.Voter
	candidates map[int64]models.Candidate
	sections   map[int64]models.Section
	votes      map[string]models.Vote // keyed by voter ID

	nextCandidateID atomic.Int64
	nextSectionID   atomic.Int64

	persister db.Persister
	gens      map[db.Collection]*generation

	publisher events.Publisher
	observer  Observer
	now       func() time.Time
}

// generation orders write-through saves of one collection. current is
// bumped under Store.mu; saved is guarded by mu.
type generation struct {
	current uint64

	mu    sync.Mutex
	saved uint64
}

// pending is a collection snapshot taken under the state lock, written
// after the lock is released.
type pending struct {
	collection db.Collection
	gen        uint64
	save       func(ctx context.Context) error
}

// New loads the persisted state and seeds the id counters from it.
func New(ctx context.Context, p db.Persister, opts ...Option) (*Store, error) {
	s := &Store{
		voters:     make(map[string]models.Voter),
		candidates: make(map[int64]models.Candidate),
		sections:   make(map[int64]models.Section),
		votes:      make(map[string]models.Vote),
		persister:  p,
		gens: map[db.Collection]*generation{
			db.CollectionVoters:     {},
			db.CollectionCandidates: {},
			db.CollectionSections:   {},
			db.CollectionVotes:      {},
		},
		publisher: events.Nop{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load election data: %w", err)
	}

	var maxCandidate, maxSection int64
	for _, v := range snap.Voters {
		s.voters[v.VoterID] = v
	}
	for _, c := range snap.Candidates {
		s.candidates[c.ID] = c
		maxCandidate = max(maxCandidate, c.ID)
	}
	for _, sec := range snap.Sections {
		sec.Status = models.StatusActive
		sec.VoteCount = 0
		s.sections[sec.ID] = sec
		maxSection = max(maxSection, sec.ID)
	}
	for _, v := range snap.Votes {
		s.votes[v.VoterID] = v
	}

	s.nextCandidateID.Store(maxCandidate + 1)
	s.nextSectionID.Store(maxSection + 1)

	slog.Info("data loaded",
		"voters", len(s.voters),
		"candidates", len(s.candidates),
		"votes", len(s.votes),
		"sections", len(s.sections),
	)

	return s, nil
}

// Stats holds collection sizes.
type Stats struct {
	Voters     int
	Candidates int
	Sections   int
	Votes      int
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Voters:     len(s.voters),
		Candidates: len(s.candidates),
		Sections:   len(s.sections),
		Votes:      len(s.votes),
	}
}

// Voters

func (s *Store) AddVoter(ctx context.Context, v models.Voter) error {
	if v.VoterID == "" {
		return ErrMissingFields
	}

	s.mu.Lock()
	if _, ok := s.voters[v.VoterID]; ok {
		s.mu.Unlock()
		return ErrVoterExists
	}
	s.voters[v.VoterID] = v
	p := s.stage(db.CollectionVoters)
	s.mu.Unlock()

	s.flush(ctx, p)
	s.publish(ctx, events.Event{Type: events.VoterAdded, VoterID: v.VoterID})
	return nil
}

func (s *Store) DeleteVoter(ctx context.Context, voterID string) error {
	s.mu.Lock()
	if _, ok := s.voters[voterID]; !ok {
		s.mu.Unlock()
		return ErrVoterNotFound
	}
	if _, voted := s.votes[voterID]; voted {
		s.mu.Unlock()
		return ErrVoterHasVoted
	}
	delete(s.voters, voterID)
	p := s.stage(db.CollectionVoters)
	s.mu.Unlock()

	s.flush(ctx, p)
	s.publish(ctx, events.Event{Type: events.VoterDeleted, VoterID: voterID})
	return nil
}

func (s *Store) Voter(voterID string) (models.VoterStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.voters[voterID]
	if !ok {
		return models.VoterStatus{}, ErrVoterNotFound
	}
	_, voted := s.votes[voterID]
	return models.VoterStatus{Voter: v, Voted: voted}, nil
}

// Voters lists every voter ordered by ID, with the derived voted flag.
func (s *Store) Voters() []models.VoterStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.VoterStatus, 0, len(s.voters))
	for id, v := range s.voters {
		_, voted := s.votes[id]
		out = append(out, models.VoterStatus{Voter: v, Voted: voted})
	}
	slices.SortFunc(out, func(a, b models.VoterStatus) int {
		return cmp.Compare(a.VoterID, b.VoterID)
	})
	return out
}

// Candidates

// AddCandidate assigns the next candidate ID and stores c under it.
func (s *Store) AddCandidate(ctx context.Context, c models.Candidate) (int64, error) {
	c.ID = s.nextCandidateID.Add(1) - 1

	s.mu.Lock()
	s.candidates[c.ID] = c
	p := s.stage(db.CollectionCandidates)
	s.mu.Unlock()

	s.flush(ctx, p)
	s.publish(ctx, events.Event{Type: events.CandidateAdded, CandidateID: c.ID, SectionID: c.SectionID})
	return c.ID, nil
}

func (s *Store) DeleteCandidate(ctx context.Context, id int64) error {
	s.mu.Lock()
	if _, ok := s.candidates[id]; !ok {
		s.mu.Unlock()
		return ErrCandidateNotFound
	}
	for _, v := range s.votes {
		if v.CandidateID == id {
			s.mu.Unlock()
			return ErrCandidateHasVotes
		}
	}
	delete(s.candidates, id)
	p := s.stage(db.CollectionCandidates)
	s.mu.Unlock()

	s.flush(ctx, p)
	s.publish(ctx, events.Event{Type: events.CandidateDeleted, CandidateID: id})
	return nil
}

// Candidates lists candidates ordered by ID. A positive sectionID keeps only
// candidates scoped to that section.
func (s *Store) Candidates(sectionID int64) []models.Candidate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Candidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		if sectionID > 0 && c.SectionID != sectionID {
			continue
		}
		out = append(out, c)
	}
	sortCandidates(out)
	return out
}

// Sections

// CreateSection assigns the next section ID; new sections are always Active.
func (s *Store) CreateSection(ctx context.Context, sec models.Section) (int64, error) {
	sec.ID = s.nextSectionID.Add(1) - 1
	sec.Status = models.StatusActive
	sec.VoteCount = 0

	s.mu.Lock()
	s.sections[sec.ID] = sec
	p := s.stage(db.CollectionSections)
	s.mu.Unlock()

	s.flush(ctx, p)
	s.publish(ctx, events.Event{Type: events.SectionCreated, SectionID: sec.ID})
	return sec.ID, nil
}

// DeleteSection removes every vote cast in the section, then the section.
func (s *Store) DeleteSection(ctx context.Context, id int64) error {
	s.mu.Lock()
	if _, ok := s.sections[id]; !ok {
		s.mu.Unlock()
		return ErrSectionNotFound
	}
	removed := 0
	for voterID, v := range s.votes {
		if v.SectionID == id {
			delete(s.votes, voterID)
			removed++
		}
	}
	votes := s.stage(db.CollectionVotes)
	delete(s.sections, id)
	sections := s.stage(db.CollectionSections)
	s.mu.Unlock()

	s.flush(ctx, votes, sections)
	slog.Info("section deleted", "section_id", id, "votes_removed", removed)
	s.publish(ctx, events.Event{Type: events.SectionDeleted, SectionID: id})
	return nil
}

// Sections lists sections ordered by ID. VoteCount is computed from the
// current votes.
func (s *Store) Sections() []models.Section {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int64]int)
	for _, v := range s.votes {
		counts[v.SectionID]++
	}

	out := make([]models.Section, 0, len(s.sections))
	for _, sec := range s.sections {
		sec.VoteCount = counts[sec.ID]
		out = append(out, sec)
	}
	slices.SortFunc(out, func(a, b models.Section) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Votes

// CastVote records v if the voter has no vote yet. The existence check and
// the insert happen under one lock, so concurrent casts for the same voter
// cannot both succeed.
func (s *Store) CastVote(ctx context.Context, v models.Vote) error {
	if v.VoterID == "" {
		return ErrMissingFields
	}
	if v.Timestamp == "" {
		v.Timestamp = s.now().UTC().Format(time.RFC3339)
	}

	s.mu.Lock()
	if err := s.insertVoteIfAbsent(v); err != nil {
		s.mu.Unlock()
		return err
	}
	p := s.stage(db.CollectionVotes)
	s.mu.Unlock()

	s.flush(ctx, p)
	if s.observer != nil {
		s.observer.VoteCast(v.SectionID)
	}
	s.publish(ctx, events.Event{
		Type:        events.VoteCast,
		VoterID:     v.VoterID,
		CandidateID: v.CandidateID,
		SectionID:   v.SectionID,
	})
	return nil
}

// insertVoteIfAbsent must be called with s.mu held for writing.
func (s *Store) insertVoteIfAbsent(v models.Vote) error {
	if _, ok := s.votes[v.VoterID]; ok {
		return ErrAlreadyVoted
	}
	if _, ok := s.voters[v.VoterID]; !ok {
		return ErrVoterNotFound
	}
	if _, ok := s.candidates[v.CandidateID]; !ok {
		return ErrCandidateNotFound
	}
	s.votes[v.VoterID] = v
	return nil
}

// Votes lists every vote ordered by voter ID.
func (s *Store) Votes() []models.Vote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedVotes()
}

// Results counts votes per candidate. A positive sectionID counts only votes
// cast in that section. Every candidate is listed, including those with no
// votes; TotalCandidates is always the size of the whole candidate set.
func (s *Store) Results(sectionID int64) models.Results {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int64]int)
	total := 0
	for _, v := range s.votes {
		if sectionID > 0 && v.SectionID != sectionID {
			continue
		}
		counts[v.CandidateID]++
		total++
	}

	candidates := make([]models.Candidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		candidates = append(candidates, c)
	}
	sortCandidates(candidates)

	tallies := make([]models.CandidateTally, 0, len(candidates))
	for _, c := range candidates {
		tallies = append(tallies, models.CandidateTally{
			Name:  c.Name,
			Party: c.Party,
			Votes: counts[c.ID],
		})
	}

	return models.Results{
		Candidates:      tallies,
		TotalVotes:      total,
		TotalCandidates: len(s.candidates),
	}
}

// Write-through

// stage copies collection c and bumps its generation. Must be called with
// s.mu held for writing.
func (s *Store) stage(c db.Collection) pending {
	g := s.gens[c]
	g.current++
	p := pending{collection: c, gen: g.current}

	switch c {
	case db.CollectionVoters:
		voters := make([]models.Voter, 0, len(s.voters))
		for _, v := range s.voters {
			voters = append(voters, v)
		}
		slices.SortFunc(voters, func(a, b models.Voter) int { return cmp.Compare(a.VoterID, b.VoterID) })
		p.save = func(ctx context.Context) error { return s.persister.SaveVoters(ctx, voters) }
	case db.CollectionCandidates:
		candidates := make([]models.Candidate, 0, len(s.candidates))
		for _, cand := range s.candidates {
			candidates = append(candidates, cand)
		}
		sortCandidates(candidates)
		p.save = func(ctx context.Context) error { return s.persister.SaveCandidates(ctx, candidates) }
	case db.CollectionSections:
		sections := make([]models.Section, 0, len(s.sections))
		for _, sec := range s.sections {
			sections = append(sections, sec)
		}
		slices.SortFunc(sections, func(a, b models.Section) int { return cmp.Compare(a.ID, b.ID) })
		p.save = func(ctx context.Context) error { return s.persister.SaveSections(ctx, sections) }
	case db.CollectionVotes:
		votes := s.sortedVotes()
		p.save = func(ctx context.Context) error { return s.persister.SaveVotes(ctx, votes) }
	}
	return p
}

// flush writes staged snapshots. A snapshot older than one already written
// is dropped. Failures are logged, never returned.
func (s *Store) flush(ctx context.Context, ps ...pending) {
	for _, p := range ps {
		g := s.gens[p.collection]
		g.mu.Lock()
		if p.gen > g.saved {
			if err := p.save(ctx); err != nil {
				slog.Error("failed to save collection", "collection", p.collection, "error", err)
				if s.observer != nil {
					s.observer.PersistFailed(p.collection)
				}
			}
			g.saved = p.gen
		}
		g.mu.Unlock()
	}
}

func (s *Store) publish(ctx context.Context, e events.Event) {
	e.At = s.now().UTC()
	if err := s.publisher.Publish(ctx, e); err != nil {
		slog.Warn("failed to publish event", "type", e.Type, "error", err)
	}
}

func (s *Store) sortedVotes() []models.Vote {
	out := make([]models.Vote, 0, len(s.votes))
	for _, v := range s.votes {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b models.Vote) int {
		return cmp.Compare(a.VoterID, b.VoterID)
	})
	return out
}

func sortCandidates(cs []models.Candidate) {
	slices.SortFunc(cs, func(a, b models.Candidate) int {
		return cmp.Compare(a.ID, b.ID)
	})
}

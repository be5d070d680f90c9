// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package events publishes election changes to NATS so other services can
// follow the vote stream. Publishing is best effort; the store never waits
// on a subscriber.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Event types
const (
	VoterAdded       = "voter.added"
	VoterDeleted     = "voter.deleted"
	CandidateAdded   = "candidate.added"
	CandidateDeleted = "candidate.deleted"
	SectionCreated   = "section.created"
	SectionDeleted   = "section.deleted"
	VoteCast         = "vote.cast"
)

// SubjectPrefix is prepended to the event type to form the NATS subject.
const SubjectPrefix = "voting."

type Event struct {
	Type        string    `json:"type"`
	VoterID     string    `json:"voterId,omitempty"`
	CandidateID int64     `json:"candidateId,omitempty"`
	SectionID   int64     `json:"sectionId,omitempty"`
	At          time.Time `json:"at"`
}

// Subject returns the NATS subject the event is published on.
func (e Event) Subject() string {
	return SubjectPrefix + e.Type
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// conn is the subset of *nats.Conn used here.
type conn interface {
	Publish(subj string, data []byte) error
	Drain() error
}

type NATSPublisher struct {
	nc conn
}

// Connect dials the NATS server at url.
func Connect(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("voting-server"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return &NATSPublisher{nc: nc}, nil
}

func (p *NATSPublisher) Publish(_ context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return p.nc.Publish(e.Subject(), data)
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db is the persistence boundary for the election state.

# Persister

Persister loads every collection at startup and rewrites one whole
collection after each mutation:

	p, err := db.Open(cfg)
	snap, err := p.Load(ctx)
	err = p.SaveVotes(ctx, votes)

No business rules live here; the store decides what to write and when.

# File Storage

FileStore (storage "file", the default) keeps one CSV file per collection
in the data directory:

  - voters.csv:     id,name,age,gender
  - candidates.csv: id,name,party,age,gender,sectionId
  - sections.csv:   id,name,description,startDate,endDate
  - votes.csv:      voterId,candidateId,sectionId,timestamp

Fields are quoted when they contain commas, quotes or newlines. A save
writes a temp file and renames it over the old one.

Older, shorter records still load: missing trailing fields default to 0,
"" or "Unknown", and unparsable numbers become 0. An absent file means an
empty collection.

# SQL Storage

SQLStore (storage "sqlite" or "postgres") uses the tables created by
CreateSchema:

  - voter
  - candidate
  - voting_section
  - vote

Each save runs DELETE plus INSERT for the collection inside one
transaction. There are no foreign keys; referential checks belong to the
store.
*/
package db

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the voting server.

The voting server keeps a registry of voters, candidates and voting
sections, accepts one vote per voter and reports per-candidate tallies.
Requests are read straight off TCP connections, one request per
connection.

# Starting the Server

With defaults (port 8080, CSV files in the working directory):

	go run .

Or with flags:

	go run . -p 3318 --storage sqlite -d voting.db

# Configuration

Settings are layered: defaults, then a YAML file (-c or VOTING_CONFIG),
then .env, then environment variables, then flags.

  - PORT (-p): listen port (default 8080)
  - STORAGE (-s): file, sqlite or postgres (default file)
  - DATA_DIR (-D): CSV directory for file storage
  - DATABASE_URL (-d): DSN for sqlite or postgres storage
  - INDEX_FILE (--index): single-page UI (default index.html)
  - ADMIN_USERNAME, ADMIN_PASSWORD, ADMIN_PASSWORD_HASH: admin login
  - METRICS_ADDR (--metrics-addr): Prometheus listener, off when empty
  - NATS_URL (--nats-url): vote event publishing, off when empty
  - MAX_CONNS (--max-conns): concurrent connection cap, 0 for none
  - LOG_LEVEL (--log-level): debug, info, warn or error

# Commands

	voting-server                 run the server
	voting-server check           print collection counts and exit
	voting-server hash-password   print a bcrypt hash for ADMIN_PASSWORD_HASH

# Architecture

  - server: accept loop, one goroutine per connection
  - wire: request parsing and response serialization
  - router: routing table and CORS
  - handlers: API endpoints and the static page
  - store: in-memory state with write-through persistence
  - db: CSV files or SQL tables behind db.Persister
  - events, metrics, static, auth, cliparse: supporting services

See package documentation for each component.
*/
package main

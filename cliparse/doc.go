// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Precedence

Later sources override earlier ones:

 1. DefaultConfig (port 8080, file storage in ".", admin/admin123)
 2. YAML file from -c/--config or VOTING_CONFIG
 3. .env file (--env-file, default ".env"); never overrides set variables
 4. Environment variables
 5. CLI flags

# Config Fields

	YAML                 Env                  Flag
	port                 PORT                 -p, --port
	data_dir             DATA_DIR             -D, --data-dir
	storage              STORAGE              -s, --storage
	database_url         DATABASE_URL         -d, --database-url
	index_file           INDEX_FILE           --index
	admin_username       ADMIN_USERNAME       --admin-user
	admin_password       ADMIN_PASSWORD       --admin-password
	admin_password_hash  ADMIN_PASSWORD_HASH  --admin-password-hash
	metrics_addr         METRICS_ADDR         --metrics-addr
	nats_url             NATS_URL             --nats-url
	max_conns            MAX_CONNS            --max-conns
	log_level            LOG_LEVEL            --log-level

# Validation

ParseFlags returns an error if:

  - the port is outside 1-65535
  - storage is not file, sqlite or postgres
  - sqlite/postgres storage has no database URL
  - max_conns is negative
*/
package cliparse

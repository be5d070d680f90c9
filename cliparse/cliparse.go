package cliparse

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

type Config struct {
	Port              int    `yaml:"port"`
	DataDir           string `yaml:"data_dir"`
	Storage           string `yaml:"storage"`
	DatabaseURL       string `yaml:"database_url"`
	IndexFile         string `yaml:"index_file"`
	AdminUsername     string `yaml:"admin_username"`
	AdminPassword     string `yaml:"admin_password"`
	AdminPasswordHash string `yaml:"admin_password_hash"`
	MetricsAddr       string `yaml:"metrics_addr"`
	NATSURL           string `yaml:"nats_url"`
	MaxConns          int    `yaml:"max_conns"`
	LogLevel          string `yaml:"log_level"`
}

// DefaultConfig returns the settings used when nothing else is provided.
func DefaultConfig() Config {
	return Config{
		Port:          8080,
		DataDir:       ".",
		Storage:       StorageFile,
		IndexFile:     "index.html",
		AdminUsername: "admin",
		AdminPassword: "admin123",
		LogLevel:      "info",
	}
}

// envVars maps environment variables to config fields.
var envVars = []struct {
	name string
	set  func(*Config, string) error
}{
	{"PORT", func(c *Config, v string) error {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("invalid PORT env variable")
		}
		c.Port = port
		return nil
	}},
	{"DATA_DIR", func(c *Config, v string) error { c.DataDir = v; return nil }},
	{"STORAGE", func(c *Config, v string) error { c.Storage = v; return nil }},
	{"DATABASE_URL", func(c *Config, v string) error { c.DatabaseURL = v; return nil }},
	{"INDEX_FILE", func(c *Config, v string) error { c.IndexFile = v; return nil }},
	{"ADMIN_USERNAME", func(c *Config, v string) error { c.AdminUsername = v; return nil }},
	{"ADMIN_PASSWORD", func(c *Config, v string) error { c.AdminPassword = v; return nil }},
	{"ADMIN_PASSWORD_HASH", func(c *Config, v string) error { c.AdminPasswordHash = v; return nil }},
	{"METRICS_ADDR", func(c *Config, v string) error { c.MetricsAddr = v; return nil }},
	{"NATS_URL", func(c *Config, v string) error { c.NATSURL = v; return nil }},
	{"MAX_CONNS", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("invalid MAX_CONNS env variable")
		}
		c.MaxConns = n
		return nil
	}},
	{"LOG_LEVEL", func(c *Config, v string) error { c.LogLevel = v; return nil }},
}

// ParseFlags builds the configuration from, in increasing precedence:
// defaults, the YAML config file, .env, environment variables and flags.
func ParseFlags(args []string) (Config, error) {
	var flags Config
	var configPath, envFile string

	fs := pflag.NewFlagSet("voting-server", pflag.ContinueOnError)

	fs.StringVarP(&configPath, "config", "c", "", "YAML config file")
	fs.StringVar(&envFile, "env-file", ".env", "dotenv file loaded into the environment if present")

	// Network config
	fs.IntVarP(&flags.Port, "port", "p", 0, "Server port")
	fs.IntVar(&flags.MaxConns, "max-conns", 0, "Maximum concurrent connections (0 = unlimited)")
	fs.StringVar(&flags.MetricsAddr, "metrics-addr", "", "Prometheus listen address (empty = disabled)")

	// Storage
	fs.StringVarP(&flags.DataDir, "data-dir", "D", "", "Directory for CSV data files")
	fs.StringVarP(&flags.Storage, "storage", "s", "", "Storage backend (file, sqlite or postgres)")
	fs.StringVarP(&flags.DatabaseURL, "database-url", "d", "", "Database URL for sqlite/postgres storage")

	fs.StringVar(&flags.IndexFile, "index", "", "Static index.html path")
	fs.StringVar(&flags.NATSURL, "nats-url", "", "NATS server URL for vote events (empty = disabled)")
	fs.StringVar(&flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&flags.AdminUsername, "admin-user", "", "Admin username")
	fs.StringVar(&flags.AdminPassword, "admin-password", "", "Admin password (prefer env)")
	fs.StringVar(&flags.AdminPasswordHash, "admin-password-hash", "", "bcrypt hash of the admin password (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()

	if configPath == "" {
		configPath = os.Getenv("VOTING_CONFIG")
	}
	if configPath != "" {
		if err := loadFile(configPath, &cfg); err != nil {
			return Config{}, err
		}
	}

	// .env never overrides variables that are already set
	if err := godotenv.Load(envFile); err != nil {
		if !errors.Is(err, os.ErrNotExist) || fs.Changed("env-file") {
			return Config{}, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	// Fall back to environment variables
	for _, ev := range envVars {
		if v := os.Getenv(ev.name); v != "" {
			if err := ev.set(&cfg, v); err != nil {
				return Config{}, err
			}
		}
	}

	// CLI flags win
	overrideChanged(fs, &cfg, flags)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.MaxConns < 0 {
		return errors.New("max-conns cannot be negative")
	}
	switch c.Storage {
	case StorageFile:
	case StorageSQLite, StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("database URL required for " + c.Storage + " storage (use -d or DATABASE_URL env)")
		}
	default:
		return fmt.Errorf("unknown storage %q (want file, sqlite or postgres)", c.Storage)
	}
	if c.AdminUsername == "" {
		return errors.New("admin username cannot be empty")
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func overrideChanged(fs *pflag.FlagSet, cfg *Config, flags Config) {
	if fs.Changed("port") {
		cfg.Port = flags.Port
	}
	if fs.Changed("max-conns") {
		cfg.MaxConns = flags.MaxConns
	}
	if fs.Changed("metrics-addr") {
		cfg.MetricsAddr = flags.MetricsAddr
	}
	if fs.Changed("data-dir") {
		cfg.DataDir = flags.DataDir
	}
	if fs.Changed("storage") {
		cfg.Storage = flags.Storage
	}
	if fs.Changed("database-url") {
		cfg.DatabaseURL = flags.DatabaseURL
	}
	if fs.Changed("index") {
		cfg.IndexFile = flags.IndexFile
	}
	if fs.Changed("nats-url") {
		cfg.NATSURL = flags.NATSURL
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = flags.LogLevel
	}
	if fs.Changed("admin-user") {
		cfg.AdminUsername = flags.AdminUsername
	}
	if fs.Changed("admin-password") {
		cfg.AdminPassword = flags.AdminPassword
	}
	if fs.Changed("admin-password-hash") {
		cfg.AdminPasswordHash = flags.AdminPasswordHash
	}
}

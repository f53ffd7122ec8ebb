package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the data directory.
const FileName = "tally.yaml"

// EnvFile holds secrets next to the config file.
const EnvFile = ".env"

// Store backends.
const (
	StoreDir    = "dir"
	StoreSQLite = "sqlite"
)

// Config represents the top-level tally.yaml configuration.
type Config struct {
	DataDir  string       `yaml:"data_dir"`
	Store    string       `yaml:"store"`
	LogLevel string       `yaml:"log_level"`
	Quotes   QuotesConfig `yaml:"quotes"`
	Git      GitConfig    `yaml:"git"`
}

// QuotesConfig selects the live price provider.
type QuotesConfig struct {
	Provider  string        `yaml:"provider"`
	APIKeyEnv string        `yaml:"api_key_env"` // name of the variable holding the key
	Timeout   time.Duration `yaml:"timeout"`
	BaseURL   string        `yaml:"base_url,omitempty"`
}

// GitConfig controls versioning of the data directory.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// ErrNoAPIKey is returned by APIKey when neither the environment nor the
// .env file defines the configured variable.
var ErrNoAPIKey = errors.New("quote API key not set")

// Load reads a tally.yaml file from disk. Unset fields take their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default(filepath.Dir(path))
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config storing data in dataDir.
func Default(dataDir string) *Config {
	return &Config{
		DataDir:  dataDir,
		Store:    StoreDir,
		LogLevel: "info",
		Quotes: QuotesConfig{
			Provider:  "finnhub",
			APIKeyEnv: "FINNHUB_API_KEY",
			Timeout:   10 * time.Second,
		},
		Git: GitConfig{
			AuthorName:  "tally",
			AuthorEmail: "tally@localhost",
		},
	}
}

// Validate checks the enumerated fields.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreDir, StoreSQLite:
	default:
		return fmt.Errorf("config: store must be %q or %q, got %q", StoreDir, StoreSQLite, c.Store)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	if c.Quotes.Provider != "finnhub" {
		return fmt.Errorf("config: unsupported quotes provider %q", c.Quotes.Provider)
	}
	if c.Quotes.Timeout <= 0 {
		return fmt.Errorf("config: quotes timeout must be positive")
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// APIKey returns the quote provider key. The process environment wins over
// a .env file in the data directory.
func (c *Config) APIKey() (string, error) {
	name := c.Quotes.APIKeyEnv
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v, nil
	}

	env, err := gotenv.Read(filepath.Join(c.DataDir, EnvFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("reading %s: %w", EnvFile, err)
	}
	if v := strings.TrimSpace(env[name]); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: export %s or add it to %s", ErrNoAPIKey, name, filepath.Join(c.DataDir, EnvFile))
}

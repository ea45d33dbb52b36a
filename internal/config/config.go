package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "LANGEXTRACT"

// Config holds the client configuration loaded from .env files and environment variables.
type Config struct {
	BaseURL            string        `mapstructure:"base_url"`
	APIKey             string        `mapstructure:"api_key"`
	LogLevel           string        `mapstructure:"log_level"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	LedgerType            string        `mapstructure:"ledger_type"`
	LedgerPath            string        `mapstructure:"ledger_path"`
	LedgerTTLSeconds      int64         `mapstructure:"ledger_ttl_seconds"`
	LedgerCleanupSeconds  int64         `mapstructure:"ledger_cleanup_interval_seconds"`
	LedgerTTL             time.Duration `mapstructure:"-"`
	LedgerCleanupInterval time.Duration `mapstructure:"-"`

	SinksFile string `mapstructure:"sinks_file"`
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.APIKey != "" {
		c.APIKey = "***"
	}
	return c
}

// Load reads configuration from environment variables (LANGEXTRACT_*) and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.SetEnvPrefix(envPrefix)

	v.SetDefault("base_url", "http://localhost:8787")
	v.SetDefault("api_key", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_timeout_seconds", 0)
	v.SetDefault("ledger_type", "bbolt")
	v.SetDefault("ledger_path", defaultLedgerPath())
	v.SetDefault("ledger_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("ledger_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
	v.SetDefault("sinks_file", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	if c.BaseURL == "" {
		return fmt.Errorf("invalid base_url (must not be empty)")
	}
	if c.HTTPTimeoutSeconds < 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be zero or positive seconds)")
	}
	c.HTTPTimeout = time.Duration(c.HTTPTimeoutSeconds) * time.Second

	if c.LedgerTTLSeconds <= 0 {
		return fmt.Errorf("invalid ledger_ttl_seconds (must be positive seconds)")
	}
	if c.LedgerCleanupSeconds <= 0 {
		return fmt.Errorf("invalid ledger_cleanup_interval_seconds (must be positive seconds)")
	}
	c.LedgerTTL = time.Duration(c.LedgerTTLSeconds) * time.Second
	c.LedgerCleanupInterval = time.Duration(c.LedgerCleanupSeconds) * time.Second
	return nil
}

func defaultLedgerPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "./data/jobs.db"
	}
	return filepath.Join(home, ".langextract", "jobs.db")
}

// ABOUTME: Application configuration loaded from XDG config file, .env and environment
// ABOUTME: Selects the REST endpoint, account store backend and charm sync settings
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"

	"github.com/harperreed/keyaccounts/remote"
)

const appName = "keyaccounts"

// Store backends for the accounts collection.
const (
	StoreKV  = "kv"
	StoreSQL = "sql"
)

// Config holds everything needed to wire the stores.
type Config struct {
	APIURL    string `json:"api_url"`
	APIToken  string `json:"api_token,omitempty"`
	Store     string `json:"store"`
	DBPath    string `json:"db_path"`
	CharmHost string `json:"charm_host,omitempty"`
	AutoSync  bool   `json:"auto_sync"`
	LogLevel  string `json:"log_level"`
}

// Dir returns the XDG directory holding configuration and local data.
func Dir() string {
	return filepath.Join(xdg.DataHome, appName)
}

// Path returns the XDG config file location.
func Path() string {
	return filepath.Join(Dir(), "config.json")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIURL:   remote.DefaultBaseURL,
		Store:    StoreKV,
		DBPath:   filepath.Join(Dir(), "accounts.db"),
		AutoSync: true,
		LogLevel: "info",
	}
}

// Load reads Path(), then envFile (if non-empty, else ./.env when present),
// then KEYACCOUNTS_* environment overrides.
func Load(envFile string) (*Config, error) {
	return LoadFrom(Path(), envFile)
}

// LoadFrom is Load with an explicit config file path.
func LoadFrom(path, envFile string) (*Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer func() { _ = f.Close() }()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFile never overrides variables already set in the process.
func loadEnvFile(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
		return nil
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KEYACCOUNTS_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("KEYACCOUNTS_API_TOKEN"); v != "" {
		cfg.APIToken = v
	}
	if v := os.Getenv("KEYACCOUNTS_STORE"); v != "" {
		cfg.Store = strings.ToLower(v)
	}
	if v := os.Getenv("KEYACCOUNTS_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("KEYACCOUNTS_CHARM_HOST"); v != "" {
		cfg.CharmHost = v
	}
	if v := os.Getenv("KEYACCOUNTS_AUTO_SYNC"); v != "" {
		cfg.AutoSync = v == "true" || v == "1"
	}
	if v := os.Getenv("KEYACCOUNTS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Validate rejects unknown store backends.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreKV, StoreSQL:
		return nil
	}
	return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreKV, StoreSQL)
}

// Save writes the config to path with owner-only permissions.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; the session token goes to the OS keychain.
//
// Values are resolved in order: built-in defaults, config.json, then KANBAN_*
// environment variables (optionally read from a .env file in the working directory).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kanban/cli/internal/xdg"

	"github.com/joho/godotenv"
)

// Environment variables that override file settings.
const (
	EnvAPIURL       = "KANBAN_API_URL"
	EnvLogLevel     = "KANBAN_LOG_LEVEL"
	EnvStorage      = "KANBAN_STORAGE"
	EnvReadyTimeout = "KANBAN_READY_TIMEOUT"
	EnvListenAddr   = "KANBAN_LISTEN_ADDR"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	// APIURL is the base URL of the kanban REST API.
	APIURL   string `json:"api_url"`
	LogLevel string `json:"log_level"`
	// Storage selects the credential store: "auto", "keychain", "file" or "none".
	Storage string `json:"storage"`
	// ReadyTimeout bounds how long navigation waits for the session to load.
	ReadyTimeout Duration `json:"ready_timeout"`
	// ListenAddr is the address of the local web shell.
	ListenAddr string `json:"listen_addr"`
}

// Duration is a time.Duration that marshals as a Go duration string ("5s").
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"5s\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the built-in settings.
func Default() Config {
	return Config{
		APIURL:       "http://localhost:4000",
		LogLevel:     "warn",
		Storage:      "auto",
		ReadyTimeout: Duration(5 * time.Second),
		ListenAddr:   "127.0.0.1:5173",
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; a missing file yields defaults. Environment
// overrides are applied last.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Config{}, err
	}
	c, err := LoadFile(p)
	if err != nil {
		return c, err
	}

	// A missing .env is the normal case.
	_ = godotenv.Load()

	if err := c.applyEnv(); err != nil {
		return c, err
	}
	return c, nil
}

// LoadFile reads configuration from path on top of the defaults.
func LoadFile(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvStorage); v != "" {
		c.Storage = v
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv(EnvReadyTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvReadyTimeout, err)
		}
		c.ReadyTimeout = Duration(d)
	}
	return nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

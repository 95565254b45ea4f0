// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package xdg resolves XDG Base Directory paths for the kanban CLI.
// It falls back to the traditional ~/.config and ~/.local/state locations when the
// XDG environment variables are not set, and creates directories with private
// permissions since the state directory may hold the encrypted credential file.
package xdg

import (
	"os"
	"path/filepath"
)

// AppName is the directory name used under each XDG base directory.
const AppName = "kanban"

// ConfigDir returns the XDG config directory for kanban.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.config/kanban when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	return dir("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the XDG state directory for kanban.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.local/state/kanban when XDG_STATE_HOME is unset.
func StateDir() (string, error) {
	return dir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func dir(env, fallback string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, fallback)
	}
	d := filepath.Join(base, AppName)
	if err := os.MkdirAll(d, 0o700); err != nil { // private dir
		return "", err
	}
	return d, nil
}

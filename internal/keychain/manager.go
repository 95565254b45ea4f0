// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides thread-safe access to the OS credential store.
// It is the durable storage behind the CLI session: the session package writes the
// token and the serialized user through a Manager, which satisfies session.Storage.
//
// Supported stores are the macOS Keychain (through the `security` command, falling
// back to the keyring library), Windows Credential Manager, Secret Service, KWallet,
// pass, and an encrypted file in the XDG state directory as a last resort.
package keychain

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	kerrors "kanban/cli/internal/errors"

	"github.com/99designs/keyring"
	"go.uber.org/zap"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "kanban"

// Backend selectors accepted by Options.Backend.
const (
	BackendAuto     = "auto"
	BackendKeychain = "keychain"
	BackendFile     = "file"
)

// FilePasswordEnv overrides the passphrase prompt of the encrypted file store.
const FilePasswordEnv = "KANBAN_KEYRING_PASSWORD"

// errNotFound is returned by native backends for missing keys.
var errNotFound = errors.New("key not found")

// keychainBackend defines the interface for native keychain operations.
type keychainBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// Options configures Open.
type Options struct {
	// Backend is one of BackendAuto, BackendKeychain or BackendFile.
	Backend string
	// FileDir is where the encrypted file store keeps its items.
	FileDir string
	Logger  *zap.Logger
}

// Manager provides centralized, thread-safe operations on the credential store.
type Manager struct {
	mu      sync.RWMutex
	ring    keyring.Keyring
	backend keychainBackend
	logger  *zap.Logger
}

// Open creates a Manager for the configured backend.
func Open(opts Options) (*Manager, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("keychain")

	if opts.Backend == "" {
		opts.Backend = BackendAuto
	}

	// Try native security backend first on macOS
	if runtime.GOOS == "darwin" && opts.Backend != BackendFile {
		backend, err := newSecurityBackend(logger)
		if err == nil {
			logger.Debug("using macOS security backend")
			return &Manager{backend: backend, logger: logger}, nil
		}
		logger.Debug("security backend unavailable, falling back to keyring", zap.Error(err))
	}

	ring, err := openRing(opts)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.StorageUnavailable, "open credential store", err)
	}
	return &Manager{ring: ring, logger: logger}, nil
}

// NewWithRing wraps an already opened keyring.
func NewWithRing(ring keyring.Keyring, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{ring: ring, logger: logger.Named("keychain")}
}

// openRing opens the keyring with the backends allowed for this platform.
func openRing(opts Options) (keyring.Keyring, error) {
	var allowed []keyring.BackendType
	switch {
	case opts.Backend == BackendFile:
		allowed = []keyring.BackendType{keyring.FileBackend}
	case runtime.GOOS == "darwin":
		// Pass requires the 'pass' utility: brew install pass
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case runtime.GOOS == "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	default:
		allowed = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.PassBackend,
		}
	}
	if opts.Backend == BackendAuto && opts.FileDir != "" && runtime.GOOS != "windows" {
		allowed = append(allowed, keyring.FileBackend)
	}
	if opts.Backend == BackendFile && opts.FileDir == "" {
		return nil, errors.New("file backend requires a directory")
	}

	cfg := keyring.Config{
		ServiceName:             ServiceName,
		AllowedBackends:         allowed,
		PassPrefix:              ServiceName,
		WinCredPrefix:           ServiceName,
		LibSecretCollectionName: ServiceName,
		KWalletAppID:            ServiceName,
		KWalletFolder:           ServiceName,
		FileDir:                 opts.FileDir,
		FilePasswordFunc:        filePassword,
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if runtime.GOOS == "darwin" && opts.Backend != BackendFile {
			return nil, errors.New("macOS Keychain unavailable. On macOS 26.0+, install 'pass': brew install pass gnupg && gpg --generate-key && pass init <gpg-key-id>")
		}
		return nil, err
	}
	return ring, nil
}

func filePassword(prompt string) (string, error) {
	if pw := os.Getenv(FilePasswordEnv); pw != "" {
		return pw, nil
	}
	return keyring.TerminalPrompt(prompt)
}

// Get retrieves a value. A missing key yields ok == false and no error.
// This method is thread-safe.
func (m *Manager) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.backend != nil {
		v, err := m.backend.Get(key)
		if errors.Is(err, errNotFound) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		return v, true, nil
	}

	it, err := m.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %q: %w", key, err)
	}
	return string(it.Data), true, nil
}

// Set stores a value, replacing any previous one.
// This method is thread-safe.
func (m *Manager) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Set(key, value)
	}
	if err := m.ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: ServiceName + " " + key}); err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}

// Remove deletes a key. Removing a missing key is not an error.
// This method is thread-safe.
func (m *Manager) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Delete(key)
	}
	err := m.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) && !os.IsNotExist(err) {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

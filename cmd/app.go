// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"kanban/cli/internal/backend"
	"kanban/cli/internal/config"
	"kanban/cli/internal/guard"
	"kanban/cli/internal/keychain"
	"kanban/cli/internal/logging"
	"kanban/cli/internal/session"
	"kanban/cli/internal/terminal"
	"kanban/cli/internal/xdg"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds the per-invocation dependencies shared by all commands.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	api    backend.API
	prompt *terminal.Prompter

	// openStorage returns the durable session storage; nil storage keeps the
	// session in memory only.
	openStorage func() (session.Storage, error)

	once  sync.Once
	store *session.Store
	guard *guard.Guard
	root  *cobra.Command
}

// appSlot is carried in the command context. PersistentPreRunE fills it so
// that Execute can release the app after the command returns.
type appSlot struct {
	a *app
}

type appKey struct{}

func withAppSlot(ctx context.Context, slot *appSlot) context.Context {
	return context.WithValue(ctx, appKey{}, slot)
}

func slotFrom(ctx context.Context) *appSlot {
	slot, _ := ctx.Value(appKey{}).(*appSlot)
	return slot
}

func appFrom(ctx context.Context) *app {
	if slot := slotFrom(ctx); slot != nil {
		return slot.a
	}
	return nil
}

// newApp loads configuration and builds the logger and API client.
func newApp(root *cobra.Command, verbose bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogLevel, verbose)

	a := &app{
		cfg:    cfg,
		logger: logger,
		api:    backend.New(cfg.APIURL, logger),
		prompt: terminal.NewPrompter(os.Stdin, os.Stdout),
		root:   root,
	}
	a.openStorage = a.openKeychain
	return a, nil
}

// openKeychain opens the credential store selected by the storage setting.
func (a *app) openKeychain() (session.Storage, error) {
	if a.cfg.Storage == "none" {
		return nil, nil
	}
	opts := keychain.Options{Backend: a.cfg.Storage, Logger: a.logger}
	if a.cfg.Storage != keychain.BackendKeychain {
		dir, err := xdg.StateDir()
		if err != nil {
			return nil, err
		}
		opts.FileDir = filepath.Join(dir, "keyring")
	}
	m, err := keychain.Open(opts)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// session opens the session store and the guard on first use.
func (a *app) session() *session.Store {
	a.once.Do(func() {
		storage, err := a.openStorage()
		if err != nil {
			a.logger.Warn("credential store unavailable, session will not persist", zap.Error(err))
			storage = nil
		}

		// Without durable storage the session lives in memory and is ready at once.
		if storage == nil {
			a.store = session.New(nil, a.logger)
			a.store.Initialize()
		} else {
			a.store = session.New(storage, a.logger)
		}

		a.guard = guard.New(a.store, guard.NavigatorFunc(a.navigate),
			guard.WithReadyTimeout(a.cfg.ReadyTimeout.Std()),
			guard.WithLogger(a.logger))
	})
	return a.store
}

// close releases the session store.
func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	_ = a.logger.Sync()
}

var errNoApp = errors.New("command context not initialized")

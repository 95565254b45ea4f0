// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session keeps the client-side authentication state of the CLI.
//
// A Store holds the current Session in memory, mirrors it into durable storage
// (the OS credential store in production) and exposes it as an observable value
// together with two derived views, IsAuthenticated and IsLoading.
//
// A Store is created once per process by the command layer and passed to whatever
// needs it; there is no package-level instance.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	kerrors "kanban/cli/internal/errors"
	"kanban/cli/internal/observable"

	"go.uber.org/zap"
)

// Durable storage keys.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// User identifies the logged-in account.
type User struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// Session is a snapshot of the authentication state. An empty Token means no token.
type Session struct {
	User      *User
	Token     string
	IsLoading bool
}

// IsAuthenticated reports whether the session holds a token.
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// Storage is a synchronous key-value store that survives process restarts.
type Storage interface {
	// Get returns the value for key; ok is false when the key is not set.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// Store owns the Session. It is safe for concurrent use.
type Store struct {
	state           *observable.Writable[Session]
	isAuthenticated *observable.Derived[Session, bool]
	isLoading       *observable.Derived[Session, bool]
	storage         Storage
	logger          *zap.Logger
}

// New creates a Store. When storage is non-nil the session is hydrated from it
// synchronously and the store starts ready. With nil storage the store stays in
// the loading state until Initialize is called.
func New(storage Storage, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		state:   observable.NewWritable(Session{IsLoading: true}),
		storage: storage,
		logger:  logger.Named("session"),
	}
	s.isAuthenticated = observable.NewDerived[Session, bool](s.state, Session.IsAuthenticated)
	s.isLoading = observable.NewDerived[Session, bool](s.state, func(v Session) bool { return v.IsLoading })

	if storage != nil {
		s.state.Set(s.hydrate())
	}
	return s
}

// hydrate reads the durable record. Read and decode faults are logged and treated
// as absent values; the stored record is never modified here.
func (s *Store) hydrate() Session {
	token, _, err := s.storage.Get(TokenKey)
	if err != nil {
		s.logger.Warn("failed to read token from storage", zap.Error(err))
		token = ""
	}

	var user *User
	raw, ok, err := s.storage.Get(UserKey)
	switch {
	case err != nil:
		s.logger.Warn("failed to read user from storage", zap.Error(err))
	case ok && raw != "":
		user, err = decodeUser(raw)
		if err != nil {
			s.logger.Error("failed to parse user from storage", zap.Error(err))
		}
	}

	// A record with only one half present is treated as logged out.
	if (token == "") != (user == nil) {
		s.logger.Warn("incomplete session record in storage, starting logged out",
			zap.Bool("has_token", token != ""),
			zap.Bool("has_user", user != nil))
		return Session{}
	}

	s.logger.Debug("session hydrated", zap.Bool("authenticated", token != ""))
	return Session{User: user, Token: token}
}

func decodeUser(raw string) (*User, error) {
	var u *User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, err
	}
	return u, nil
}

// Subscribe calls fn with the current Session and with every later one.
func (s *Store) Subscribe(fn func(Session)) (unsubscribe func()) {
	return s.state.Subscribe(fn)
}

// Get returns the current Session.
func (s *Store) Get() Session {
	return s.state.Get()
}

// Login persists the user and token, then marks the session authenticated.
// When a storage write fails the in-memory session is left unchanged.
func (s *Store) Login(user User, token string) error {
	if s.storage != nil {
		b, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("encode user: %w", err)
		}
		if err := s.storage.Set(TokenKey, token); err != nil {
			return kerrors.Wrap(kerrors.StorageWrite, "save token", err)
		}
		if err := s.storage.Set(UserKey, string(b)); err != nil {
			return kerrors.Wrap(kerrors.StorageWrite, "save user", err)
		}
	}

	u := user
	s.state.Set(Session{User: &u, Token: token})
	s.logger.Info("logged in", zap.String("user_id", user.UserID))
	return nil
}

// Logout deletes the durable record and clears the session.
func (s *Store) Logout() error {
	if s.storage != nil {
		if err := s.storage.Remove(TokenKey); err != nil {
			return kerrors.Wrap(kerrors.StorageWrite, "remove token", err)
		}
		if err := s.storage.Remove(UserKey); err != nil {
			return kerrors.Wrap(kerrors.StorageWrite, "remove user", err)
		}
	}

	s.state.Set(Session{})
	s.logger.Info("logged out")
	return nil
}

// Initialize clears the loading flag without touching user or token.
func (s *Store) Initialize() {
	s.state.Update(func(cur Session) Session {
		cur.IsLoading = false
		return cur
	})
}

// IsAuthenticated is true whenever the session holds a token.
func (s *Store) IsAuthenticated() observable.Readable[bool] {
	return s.isAuthenticated
}

// IsLoading mirrors the session's loading flag.
func (s *Store) IsLoading() observable.Readable[bool] {
	return s.isLoading
}

// WaitUntilReady blocks until the session is no longer loading or ctx is done.
func (s *Store) WaitUntilReady(ctx context.Context) error {
	if !s.isLoading.Get() {
		return nil
	}

	ready := make(chan struct{})
	var once sync.Once
	unsubscribe := s.isLoading.Subscribe(func(loading bool) {
		if !loading {
			once.Do(func() { close(ready) })
		}
	})
	defer unsubscribe()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close detaches the derived views. The Store must not be used afterwards.
func (s *Store) Close() {
	s.isAuthenticated.Close()
	s.isLoading.Close()
}

// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	kerrors "kanban/cli/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// memStorage is an in-memory Storage with injectable failures.
type memStorage struct {
	data      map[string]string
	setErr    error
	removeErr error
	getErr    map[string]error
}

func newMemStorage() *memStorage {
	return &memStorage{data: map[string]string{}, getErr: map[string]error{}}
}

func (m *memStorage) Get(key string) (string, bool, error) {
	if err := m.getErr[key]; err != nil {
		return "", false, err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStorage) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *memStorage) Remove(key string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.data, key)
	return nil
}

var alice = User{UserID: "42", Username: "alice"}

func TestIsAuthenticatedTracksToken(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		want    bool
	}{
		{name: "token present", session: Session{User: &alice, Token: "abc"}, want: true},
		{name: "token present without user", session: Session{Token: "abc"}, want: true},
		{name: "token absent", session: Session{User: &alice}, want: false},
		{name: "empty session", session: Session{}, want: false},
		{name: "loading", session: Session{IsLoading: true}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.session.IsAuthenticated())
		})
	}
}

func TestNewWithoutStorageStaysLoading(t *testing.T) {
	s := New(nil, nil)
	defer s.Close()

	got := s.Get()
	assert.True(t, got.IsLoading)
	assert.Nil(t, got.User)
	assert.Empty(t, got.Token)
	assert.True(t, s.IsLoading().Get())
	assert.False(t, s.IsAuthenticated().Get())
}

func TestNewHydratesFromStorage(t *testing.T) {
	st := newMemStorage()
	st.data[TokenKey] = "abc"
	st.data[UserKey] = `{"userId":"42","username":"alice"}`

	s := New(st, zap.NewNop())
	defer s.Close()

	got := s.Get()
	assert.False(t, got.IsLoading)
	require.NotNil(t, got.User)
	assert.Equal(t, alice, *got.User)
	assert.Equal(t, "abc", got.Token)
	assert.True(t, s.IsAuthenticated().Get())
}

func TestNewWithEmptyStorageIsReadyAndLoggedOut(t *testing.T) {
	s := New(newMemStorage(), zap.NewNop())
	defer s.Close()

	assert.Equal(t, Session{}, s.Get())
	assert.False(t, s.IsLoading().Get())
}

func TestLoginSurvivesReload(t *testing.T) {
	st := newMemStorage()
	first := New(st, zap.NewNop())
	require.NoError(t, first.Login(alice, "tok-1"))
	first.Close()

	assert.Equal(t, "tok-1", st.data[TokenKey])
	assert.JSONEq(t, `{"userId":"42","username":"alice"}`, st.data[UserKey])

	reloaded := New(st, zap.NewNop())
	defer reloaded.Close()

	got := reloaded.Get()
	require.NotNil(t, got.User)
	assert.Equal(t, alice, *got.User)
	assert.True(t, reloaded.IsAuthenticated().Get())
}

func TestLogoutSurvivesReload(t *testing.T) {
	st := newMemStorage()
	first := New(st, zap.NewNop())
	require.NoError(t, first.Login(alice, "tok-1"))
	require.NoError(t, first.Logout())
	first.Close()

	assert.Empty(t, st.data)

	reloaded := New(st, zap.NewNop())
	defer reloaded.Close()

	got := reloaded.Get()
	assert.Nil(t, got.User)
	assert.Empty(t, got.Token)
	assert.False(t, reloaded.IsAuthenticated().Get())
}

func TestLoginStorageFailureLeavesSessionUnchanged(t *testing.T) {
	st := newMemStorage()
	st.setErr = errors.New("keychain locked")
	s := New(st, zap.NewNop())
	defer s.Close()

	err := s.Login(alice, "tok-1")

	require.Error(t, err)
	assert.True(t, kerrors.Is(err, kerrors.StorageWrite))
	assert.ErrorIs(t, err, st.setErr)
	assert.False(t, s.IsAuthenticated().Get())
	assert.Nil(t, s.Get().User)
}

func TestLogoutStorageFailureIsReturned(t *testing.T) {
	st := newMemStorage()
	s := New(st, zap.NewNop())
	defer s.Close()
	require.NoError(t, s.Login(alice, "tok-1"))

	st.removeErr = errors.New("keychain locked")
	err := s.Logout()

	assert.True(t, kerrors.Is(err, kerrors.StorageWrite))
	assert.True(t, s.IsAuthenticated().Get())
}

func TestLoginWithoutStorageUpdatesMemoryOnly(t *testing.T) {
	s := New(nil, zap.NewNop())
	defer s.Close()

	require.NoError(t, s.Login(alice, "tok-1"))

	got := s.Get()
	assert.False(t, got.IsLoading)
	assert.True(t, got.IsAuthenticated())
}

func TestInitializeOnlyClearsLoading(t *testing.T) {
	s := New(nil, zap.NewNop())
	defer s.Close()

	s.Initialize()
	assert.Equal(t, Session{}, s.Get())

	require.NoError(t, s.Login(alice, "tok-1"))
	before := s.Get()
	s.Initialize()
	after := s.Get()

	assert.Equal(t, before.User, after.User)
	assert.Equal(t, before.Token, after.Token)
	assert.False(t, after.IsLoading)
}

func TestSubscribeDeliversEachMutationOnce(t *testing.T) {
	s := New(newMemStorage(), zap.NewNop())
	defer s.Close()

	var seen []Session
	unsubscribe := s.Subscribe(func(v Session) { seen = append(seen, v) })
	require.NoError(t, s.Login(alice, "tok-1"))
	require.NoError(t, s.Logout())
	s.Initialize()
	unsubscribe()
	require.NoError(t, s.Login(alice, "tok-2"))

	require.Len(t, seen, 4)
	assert.Equal(t, Session{}, seen[0])
	assert.Equal(t, "tok-1", seen[1].Token)
	assert.Equal(t, alice, *seen[1].User)
	assert.Equal(t, Session{}, seen[2])
	assert.Equal(t, Session{}, seen[3])
}

func TestDerivedViewsNotifyOnChange(t *testing.T) {
	s := New(nil, zap.NewNop())
	defer s.Close()

	var auth, loading []bool
	s.IsAuthenticated().Subscribe(func(v bool) { auth = append(auth, v) })
	s.IsLoading().Subscribe(func(v bool) { loading = append(loading, v) })

	s.Initialize()
	require.NoError(t, s.Login(alice, "tok-1"))
	require.NoError(t, s.Login(alice, "tok-2"))
	require.NoError(t, s.Logout())

	assert.Equal(t, []bool{false, true, false}, auth)
	assert.Equal(t, []bool{true, false}, loading)
}

func TestMalformedUserIsTreatedAsAbsent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	st := newMemStorage()
	st.data[UserKey] = "{not valid json"

	s := New(st, zap.New(core))
	defer s.Close()

	got := s.Get()
	assert.Nil(t, got.User)
	assert.Empty(t, got.Token)
	assert.False(t, got.IsLoading)
	assert.Equal(t, "{not valid json", st.data[UserKey], "malformed record must be kept")
	assert.Equal(t, 1, logs.FilterMessage("failed to parse user from storage").Len())
}

func TestIncompleteRecordStartsLoggedOut(t *testing.T) {
	tests := []struct {
		name string
		data map[string]string
	}{
		{name: "token without user", data: map[string]string{TokenKey: "abc"}},
		{name: "token with malformed user", data: map[string]string{TokenKey: "abc", UserKey: "{"}},
		{name: "user without token", data: map[string]string{UserKey: `{"userId":"42","username":"alice"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newMemStorage()
			for k, v := range tt.data {
				st.data[k] = v
			}

			s := New(st, zap.NewNop())
			defer s.Close()

			assert.Equal(t, Session{}, s.Get())
			assert.False(t, s.IsAuthenticated().Get())
			assert.Len(t, st.data, len(tt.data))
		})
	}
}

func TestReadFailureIsTreatedAsAbsent(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	st := newMemStorage()
	st.data[TokenKey] = "abc"
	st.getErr[UserKey] = errors.New("dbus unavailable")

	s := New(st, zap.New(core))
	defer s.Close()

	assert.Equal(t, Session{}, s.Get())
	assert.Equal(t, 1, logs.FilterMessage("failed to read user from storage").Len())
}

func TestWaitUntilReady(t *testing.T) {
	t.Run("returns immediately when ready", func(t *testing.T) {
		s := New(newMemStorage(), zap.NewNop())
		defer s.Close()

		assert.NoError(t, s.WaitUntilReady(context.Background()))
	})

	t.Run("returns after Initialize", func(t *testing.T) {
		s := New(nil, zap.NewNop())
		defer s.Close()

		done := make(chan error, 1)
		go func() { done <- s.WaitUntilReady(context.Background()) }()

		select {
		case <-done:
			t.Fatal("WaitUntilReady returned while loading")
		case <-time.After(20 * time.Millisecond):
		}

		s.Initialize()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("WaitUntilReady did not return after Initialize")
		}
	})

	t.Run("honours context deadline", func(t *testing.T) {
		s := New(nil, zap.NewNop())
		defer s.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		err := s.WaitUntilReady(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.True(t, s.IsLoading().Get())
	})
}

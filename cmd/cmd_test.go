// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"kanban/cli/internal/backend"
	"kanban/cli/internal/config"
	kerrors "kanban/cli/internal/errors"
	"kanban/cli/internal/keychain"
	"kanban/cli/internal/session"
	"kanban/cli/internal/terminal"

	"github.com/99designs/keyring"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	pterm.DisableOutput()
	os.Exit(m.Run())
}

type fakeAPI struct {
	mu         sync.Mutex
	loginCalls int
	listErr    error
	gotProject int
	gotToken   string
}

func (f *fakeAPI) Login(_ context.Context, username, password string) (backend.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	if password != "pw" {
		return backend.Account{}, kerrors.New(kerrors.Unauthorized, "invalid credentials")
	}
	return backend.Account{UserID: "9", Username: username, Token: "tok-" + username}, nil
}

func (f *fakeAPI) Register(_ context.Context, username, _ string) (backend.Account, error) {
	return backend.Account{UserID: "10", Username: username}, nil
}

func (f *fakeAPI) ListProjects(_ context.Context, token string) ([]backend.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotToken = token
	return []backend.Project{{ProjectID: 1, Name: "board"}}, f.listErr
}

func (f *fakeAPI) GetProject(_ context.Context, token string, id int) (backend.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotToken, f.gotProject = token, id
	return backend.Project{ProjectID: id, Name: "board"}, nil
}

// newTestApp returns an app backed by an in-memory keyring. input feeds prompts.
func newTestApp(t *testing.T, api backend.API, input string) (*app, *keychain.Manager) {
	t.Helper()
	storage := keychain.NewWithRing(keyring.NewArrayKeyring(nil), nil)
	a := &app{
		cfg:    config.Default(),
		logger: zap.NewNop(),
		api:    api,
		prompt: terminal.NewPrompter(strings.NewReader(input), io.Discard),
		root:   rootCmd,
	}
	a.openStorage = func() (session.Storage, error) { return storage, nil }
	return a, storage
}

func loggedIn(t *testing.T, storage *keychain.Manager) {
	t.Helper()
	require.NoError(t, storage.Set(session.TokenKey, "abc"))
	require.NoError(t, storage.Set(session.UserKey, `{"userId":"1","username":"alice"}`))
}

func run(t *testing.T, a *app, args ...string) error {
	t.Helper()
	return execute(context.Background(), &appSlot{a: a}, args)
}

func TestPrivateCommandRedirectsToLogin(t *testing.T) {
	api := &fakeAPI{}
	a, storage := newTestApp(t, api, "bob\npw\n")

	require.NoError(t, run(t, a, "dashboard"))

	assert.Equal(t, 1, api.loginCalls)
	s := a.store.Get()
	assert.Equal(t, "tok-bob", s.Token)
	require.NotNil(t, s.User)
	assert.Equal(t, "bob", s.User.Username)

	tok, ok, err := storage.Get(session.TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-bob", tok)
}

func TestAuthOnlyCommandRedirectsToDashboard(t *testing.T) {
	api := &fakeAPI{}
	a, storage := newTestApp(t, api, "")
	loggedIn(t, storage)

	require.NoError(t, run(t, a, "login"))

	assert.Zero(t, api.loginCalls)
	assert.Equal(t, "abc", a.store.Get().Token)
}

func TestLoginRejected(t *testing.T) {
	api := &fakeAPI{}
	a, storage := newTestApp(t, api, "bob\nwrong\n")

	err := run(t, a, "login")

	assert.True(t, kerrors.Is(err, kerrors.Unauthorized))
	assert.False(t, a.store.Get().IsAuthenticated())
	_, ok, err := storage.Get(session.TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenRoutes(t *testing.T) {
	t.Run("open route", func(t *testing.T) {
		a, _ := newTestApp(t, &fakeAPI{}, "")
		assert.NoError(t, run(t, a, "open", "about"))
	})

	t.Run("unknown route", func(t *testing.T) {
		a, _ := newTestApp(t, &fakeAPI{}, "")
		err := run(t, a, "open", "/nowhere")
		assert.EqualError(t, err, "no command for /nowhere")
	})

	t.Run("nested private route", func(t *testing.T) {
		api := &fakeAPI{}
		a, storage := newTestApp(t, api, "")
		loggedIn(t, storage)

		require.NoError(t, run(t, a, "open", "/projects/3"))
		assert.Equal(t, 3, api.gotProject)
		assert.Equal(t, "abc", api.gotToken)
	})

	t.Run("nested private route anonymous", func(t *testing.T) {
		api := &fakeAPI{}
		a, _ := newTestApp(t, api, "carol\npw\n")

		require.NoError(t, run(t, a, "open", "/projects/3"))
		assert.Zero(t, api.gotProject)
		assert.Equal(t, 1, api.loginCalls)
	})
}

func TestProjectsTokenRejectedLogsOut(t *testing.T) {
	api := &fakeAPI{listErr: kerrors.New(kerrors.Unauthorized, "token expired")}
	a, storage := newTestApp(t, api, "")
	loggedIn(t, storage)

	err := run(t, a, "projects")

	assert.True(t, kerrors.Is(err, kerrors.Unauthorized))
	assert.False(t, a.store.Get().IsAuthenticated())
	_, ok, err := storage.Get(session.UserKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogout(t *testing.T) {
	a, storage := newTestApp(t, &fakeAPI{}, "")
	loggedIn(t, storage)

	require.NoError(t, run(t, a, "logout"))

	assert.Equal(t, session.Session{}, a.store.Get())
	_, ok, err := storage.Get(session.TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorageUnavailableKeepsSessionInMemory(t *testing.T) {
	a, _ := newTestApp(t, &fakeAPI{}, "")
	a.openStorage = func() (session.Storage, error) {
		return nil, kerrors.Wrap(kerrors.StorageUnavailable, "open credential store", errors.New("no dbus"))
	}

	require.NoError(t, run(t, a, "whoami"))
	assert.False(t, a.store.Get().IsLoading)
	assert.False(t, a.store.Get().IsAuthenticated())
}

func TestNavigateStopsRedirectLoops(t *testing.T) {
	a, _ := newTestApp(t, &fakeAPI{}, "")
	ctx := context.WithValue(context.Background(), redirectDepthKey{}, maxRedirects)

	err := a.navigate(ctx, "/about")
	assert.ErrorContains(t, err, "too many redirects")
}

func TestFindRoute(t *testing.T) {
	tests := []struct {
		path     string
		wantCmd  string
		wantArgs []string
	}{
		{path: "/login", wantCmd: "login"},
		{path: "/projects", wantCmd: "projects"},
		{path: "/projects/12", wantCmd: "projects", wantArgs: []string{"12"}},
		{path: "/projectsx", wantCmd: ""},
		{path: "/nowhere", wantCmd: ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			c, args := findRoute(rootCmd, tt.path)
			if tt.wantCmd == "" {
				assert.Nil(t, c)
				return
			}
			require.NotNil(t, c)
			assert.Equal(t, tt.wantCmd, c.Name())
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestRouteOf(t *testing.T) {
	assert.Equal(t, "/projects/4", routeOf(projectsCmd, []string{"4"}))
	assert.Equal(t, "/dashboard", routeOf(dashboardCmd, nil))
	assert.Equal(t, "", routeOf(whoamiCmd, nil))
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	a, _ := newTestApp(t, &fakeAPI{}, "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)

	require.NoError(t, run(t, a, "config", "path"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out.String()), "kanban/config.json"), out.String())
}

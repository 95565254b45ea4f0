// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"kanban/cli/internal/backend"
	kerrors "kanban/cli/internal/errors"
	"kanban/cli/internal/guard"
	"kanban/cli/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	mu        sync.Mutex
	loginErr  error
	listErr   error
	projects  []backend.Project
	gotTokens []string
}

func (f *fakeAPI) Login(_ context.Context, username, password string) (backend.Account, error) {
	if f.loginErr != nil {
		return backend.Account{}, f.loginErr
	}
	return backend.Account{UserID: "7", Username: username, Token: "tok-" + username}, nil
}

func (f *fakeAPI) Register(_ context.Context, username, _ string) (backend.Account, error) {
	return backend.Account{UserID: "8", Username: username}, nil
}

func (f *fakeAPI) ListProjects(_ context.Context, token string) ([]backend.Project, error) {
	f.mu.Lock()
	f.gotTokens = append(f.gotTokens, token)
	f.mu.Unlock()
	return f.projects, f.listErr
}

func (f *fakeAPI) GetProject(_ context.Context, token string, id int) (backend.Project, error) {
	for _, p := range f.projects {
		if p.ProjectID == id {
			return p, nil
		}
	}
	return backend.Project{}, kerrors.New(kerrors.BackendRequest, "not found")
}

func newTestServer(t *testing.T, api backend.API, authenticated bool) (*session.Store, http.Handler) {
	t.Helper()
	store := session.New(nil, zap.NewNop())
	t.Cleanup(store.Close)
	store.Initialize()
	if authenticated {
		require.NoError(t, store.Login(session.User{UserID: "1", Username: "alice"}, "abc"))
	}
	g := guard.New(store, nil)
	return store, New(store, api, g, zap.NewNop()).Handler()
}

func do(h http.Handler, method, path string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGuardedPages(t *testing.T) {
	tests := []struct {
		name          string
		authenticated bool
		path          string
		wantStatus    int
		wantLocation  string
	}{
		{name: "anonymous dashboard", path: "/dashboard", wantStatus: http.StatusSeeOther, wantLocation: "/login"},
		{name: "anonymous project", path: "/projects/1", wantStatus: http.StatusSeeOther, wantLocation: "/login"},
		{name: "anonymous login", path: "/login", wantStatus: http.StatusOK},
		{name: "anonymous about", path: "/about", wantStatus: http.StatusOK},
		{name: "authenticated login", authenticated: true, path: "/login", wantStatus: http.StatusSeeOther, wantLocation: "/dashboard"},
		{name: "authenticated dashboard", authenticated: true, path: "/dashboard", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h := newTestServer(t, &fakeAPI{}, tt.authenticated)
			rec := do(h, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
		})
	}
}

func TestLoginFlow(t *testing.T) {
	store, h := newTestServer(t, &fakeAPI{}, false)

	rec := do(h, http.MethodPost, "/login", url.Values{"username": {"bob"}, "password": {"pw"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	got := store.Get()
	assert.Equal(t, "tok-bob", got.Token)
	require.NotNil(t, got.User)
	assert.Equal(t, "bob", got.User.Username)

	rec = do(h, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome, bob")
}

func TestLoginRejected(t *testing.T) {
	api := &fakeAPI{loginErr: kerrors.New(kerrors.Unauthorized, "invalid credentials")}
	store, h := newTestServer(t, api, false)

	rec := do(h, http.MethodPost, "/login", url.Values{"username": {"bob"}, "password": {"bad"}})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Login failed")
	assert.Contains(t, rec.Body.String(), `value="bob"`)
	assert.False(t, store.Get().IsAuthenticated())
}

func TestLoginMissingFields(t *testing.T) {
	_, h := newTestServer(t, &fakeAPI{}, false)
	rec := do(h, http.MethodPost, "/login", url.Values{"username": {"bob"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterRedirectsToLogin(t *testing.T) {
	_, h := newTestServer(t, &fakeAPI{}, false)
	rec := do(h, http.MethodPost, "/register", url.Values{"username": {"bob"}, "password": {"pw"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	store, h := newTestServer(t, &fakeAPI{}, true)

	rec := do(h, http.MethodPost, "/logout", url.Values{})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Equal(t, session.Session{}, store.Get())
}

func TestProjects(t *testing.T) {
	api := &fakeAPI{projects: []backend.Project{
		{ProjectID: 3, Name: "board", Status: "active", Dependencies: []string{"svelte"}},
	}}
	_, h := newTestServer(t, api, true)

	rec := do(h, http.MethodGet, "/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<a href="/projects/3">board</a>`)
	assert.Equal(t, []string{"abc"}, api.gotTokens)

	rec = do(h, http.MethodGet, "/projects/3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "svelte")

	rec = do(h, http.MethodGet, "/projects/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjectsTokenRejectedLogsOut(t *testing.T) {
	api := &fakeAPI{listErr: kerrors.New(kerrors.Unauthorized, "token expired")}
	store, h := newTestServer(t, api, true)

	rec := do(h, http.MethodGet, "/projects", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.False(t, store.Get().IsAuthenticated())
}

func TestProjectsBackendFailure(t *testing.T) {
	api := &fakeAPI{listErr: kerrors.New(kerrors.BackendRequest, "HTTP 500")}
	_, h := newTestServer(t, api, true)

	rec := do(h, http.MethodGet, "/projects", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

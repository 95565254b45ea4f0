// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package guard decides whether a navigation may proceed given the current session.
//
// Before deciding, the guard waits for the session to leave its loading state,
// bounded by the caller's context and an optional timeout. It then classifies
// the destination and either allows the navigation or redirects:
//
//	authenticated | route kind | result
//	false         | private    | redirect to LoginPath, veto
//	true          | auth-only  | redirect to HomePath, veto
//	otherwise     |            | allow
package guard

import (
	"context"
	"net/http"
	"net/url"
	"time"

	kerrors "kanban/cli/internal/errors"
	"kanban/cli/internal/observable"

	"go.uber.org/zap"
)

// SessionState is the part of the session store the guard reads.
type SessionState interface {
	WaitUntilReady(ctx context.Context) error
	IsAuthenticated() observable.Readable[bool]
}

// Navigator performs client-side navigation to path.
type Navigator interface {
	Goto(ctx context.Context, path string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string) error

func (f NavigatorFunc) Goto(ctx context.Context, path string) error { return f(ctx, path) }

// Decision is the outcome of a Check.
type Decision struct {
	Allow bool
	// Redirect is the path to navigate to instead; empty when Allow is true.
	Redirect string
	Kind     Kind
}

// Guard gates navigation on the session state.
type Guard struct {
	state   SessionState
	nav     Navigator
	routes  Routes
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures a Guard.
type Option func(*Guard)

// WithRoutes replaces DefaultRoutes.
func WithRoutes(r Routes) Option {
	return func(g *Guard) { g.routes = r }
}

// WithReadyTimeout bounds the wait for the session to become ready.
// Zero means wait as long as the context allows.
func WithReadyTimeout(d time.Duration) Option {
	return func(g *Guard) { g.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Guard) { g.logger = l }
}

// New creates a Guard. nav may be nil when only Check or Middleware are used.
func New(state SessionState, nav Navigator, opts ...Option) *Guard {
	g := &Guard{
		state:  state,
		nav:    nav,
		routes: DefaultRoutes(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.Named("guard")
	return g
}

// Routes returns the route table in use.
func (g *Guard) Routes() Routes {
	return g.routes
}

// Check waits for the session to be ready and decides on path.
func (g *Guard) Check(ctx context.Context, path string) (Decision, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	if err := g.state.WaitUntilReady(ctx); err != nil {
		return Decision{}, kerrors.Wrap(kerrors.NotReady, "waiting for session", err)
	}

	authenticated := g.state.IsAuthenticated().Get()
	kind := g.routes.Classify(path)

	d := Decision{Allow: true, Kind: kind}
	switch {
	case !authenticated && kind == KindPrivate:
		d = Decision{Redirect: g.routes.LoginPath, Kind: kind}
	case authenticated && kind == KindAuthOnly:
		d = Decision{Redirect: g.routes.HomePath, Kind: kind}
	}

	g.logger.Debug("navigation checked",
		zap.String("path", path),
		zap.Stringer("kind", kind),
		zap.Bool("authenticated", authenticated),
		zap.Bool("allow", d.Allow),
		zap.String("redirect", d.Redirect))
	return d, nil
}

// HandleNavigate decides on the navigation from -> to. When it returns false the
// pending navigation must be cancelled; a redirect, if any, has already been
// started through the Navigator. from may be nil.
func (g *Guard) HandleNavigate(ctx context.Context, from, to *url.URL) (bool, error) {
	d, err := g.Check(ctx, to.Path)
	if err != nil {
		return false, err
	}
	if d.Allow {
		return true, nil
	}

	fields := []zap.Field{zap.String("to", to.Path), zap.String("redirect", d.Redirect)}
	if from != nil {
		fields = append(fields, zap.String("from", from.Path))
	}
	g.logger.Info("navigation vetoed", fields...)

	if g.nav != nil {
		if err := g.nav.Goto(ctx, d.Redirect); err != nil {
			return false, kerrors.Wrap(kerrors.NavigationFailed, "redirect to "+d.Redirect, err)
		}
	}
	return false, nil
}

// Middleware applies the guard to HTTP requests, answering vetoed requests with
// a 303 redirect. A session that does not become ready yields 503.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, err := g.Check(r.Context(), r.URL.Path)
		if err != nil {
			g.logger.Warn("session not ready", zap.String("path", r.URL.Path), zap.Error(err))
			http.Error(w, "session not ready", http.StatusServiceUnavailable)
			return
		}
		if !d.Allow {
			http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

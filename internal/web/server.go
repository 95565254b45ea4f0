// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package web serves a small local browser shell over the CLI session.
//
// Every request passes through the navigation guard before reaching a page, so
// the shell and the terminal commands share one session and one set of rules.
package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"kanban/cli/internal/backend"
	kerrors "kanban/cli/internal/errors"
	"kanban/cli/internal/guard"
	"kanban/cli/internal/logging"
	"kanban/cli/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server renders the shell pages.
type Server struct {
	store  *session.Store
	api    backend.API
	guard  *guard.Guard
	logger *zap.Logger
}

// New creates a Server.
func New(store *session.Store, api backend.API, g *guard.Guard, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{store: store, api: api, guard: g, logger: logger.Named("web")}
}

// Handler returns the routed, guarded handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.guard.Middleware)

	r.Get("/", s.index)
	r.Get("/about", s.about)
	r.Get("/login", s.loginForm)
	r.Post("/login", s.login)
	r.Get("/register", s.registerForm)
	r.Post("/register", s.register)
	r.Post("/logout", s.logout)
	r.Get("/dashboard", s.dashboard)
	r.Route("/projects", func(r chi.Router) {
		r.Get("/", s.projects)
		r.Get("/{id}", s.project)
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "index", s.page("Kanban"))
}

func (s *Server) about(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "about", s.page("About"))
}

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "login", s.page("Log in"))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	username, password := r.PostFormValue("username"), r.PostFormValue("password")
	p := s.page("Log in")
	p.Username = username
	if username == "" || password == "" {
		p.Error = "Username and password are required."
		s.render(w, http.StatusBadRequest, "login", p)
		return
	}

	acct, err := s.api.Login(r.Context(), username, password)
	if err != nil {
		status := http.StatusBadGateway
		if kerrors.Is(err, kerrors.Unauthorized) {
			status = http.StatusUnauthorized
		}
		p.Error = logging.PresentError("Login failed", err)
		s.render(w, status, "login", p)
		return
	}

	if err := s.store.Login(session.User{UserID: acct.UserID, Username: acct.Username}, acct.Token); err != nil {
		s.logger.Error("failed to save session", zap.Error(err))
		p.Error = "Logged in, but the session could not be saved."
		s.render(w, http.StatusInternalServerError, "login", p)
		return
	}
	http.Redirect(w, r, s.guard.Routes().HomePath, http.StatusSeeOther)
}

func (s *Server) registerForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "register", s.page("Register"))
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	username, password := r.PostFormValue("username"), r.PostFormValue("password")
	p := s.page("Register")
	p.Username = username
	if username == "" || password == "" {
		p.Error = "Username and password are required."
		s.render(w, http.StatusBadRequest, "register", p)
		return
	}

	if _, err := s.api.Register(r.Context(), username, password); err != nil {
		p.Error = logging.PresentError("Registration failed", err)
		s.render(w, http.StatusBadGateway, "register", p)
		return
	}
	http.Redirect(w, r, s.guard.Routes().LoginPath, http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Logout(); err != nil {
		s.logger.Error("failed to clear session", zap.Error(err))
		http.Error(w, "could not log out", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, s.guard.Routes().LoginPath, http.StatusSeeOther)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "dashboard", s.page("Dashboard"))
}

func (s *Server) projects(w http.ResponseWriter, r *http.Request) {
	list, err := s.api.ListProjects(r.Context(), s.store.Get().Token)
	if err != nil {
		s.backendFailure(w, r, err)
		return
	}
	p := s.page("Projects")
	p.Projects = list
	s.render(w, http.StatusOK, "projects", p)
}

func (s *Server) project(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	proj, err := s.api.GetProject(r.Context(), s.store.Get().Token, id)
	if err != nil {
		s.backendFailure(w, r, err)
		return
	}
	p := s.page(proj.Name)
	p.Project = &proj
	s.render(w, http.StatusOK, "project", p)
}

// backendFailure answers a failed API call. A rejected token ends the session.
func (s *Server) backendFailure(w http.ResponseWriter, r *http.Request, err error) {
	if kerrors.Is(err, kerrors.Unauthorized) {
		s.logger.Info("token rejected by API, logging out")
		if lerr := s.store.Logout(); lerr != nil {
			s.logger.Error("failed to clear session", zap.Error(lerr))
		}
		http.Redirect(w, r, s.guard.Routes().LoginPath, http.StatusSeeOther)
		return
	}
	s.logger.Warn("API request failed", zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, logging.PresentError("kanban API", err), http.StatusBadGateway)
}

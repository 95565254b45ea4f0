// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

package web

import (
	"bytes"
	"html/template"
	"net/http"

	"kanban/cli/internal/backend"
	"kanban/cli/internal/session"

	"go.uber.org/zap"
)

// page is the data every template receives.
type page struct {
	Title    string
	User     *session.User
	Error    string
	Username string
	Projects []backend.Project
	Project  *backend.Project
}

func (s *Server) page(title string) page {
	return page{Title: title, User: s.store.Get().User}
}

func (s *Server) render(w http.ResponseWriter, status int, name string, p page) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, p); err != nil {
		s.logger.Error("render failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

var templates = template.Must(template.New("").Parse(`
{{define "head"}}<!doctype html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title></head><body>
<nav>
  <a href="/">Home</a> <a href="/about">About</a>
  {{if .User}}<a href="/dashboard">Dashboard</a> <a href="/projects">Projects</a>
  <form method="post" action="/logout" style="display:inline"><button>Log out {{.User.Username}}</button></form>
  {{else}}<a href="/login">Log in</a> <a href="/register">Register</a>{{end}}
</nav>
<main>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{end}}

{{define "foot"}}</main></body></html>
{{end}}

{{define "credentials"}}
<form method="post">
  <label>Username <input name="username" value="{{.Username}}" autofocus></label>
  <label>Password <input name="password" type="password"></label>
  <button>{{.Title}}</button>
</form>
{{end}}

{{define "index"}}{{template "head" .}}<h1>Kanban</h1>
<p>Track your projects from the terminal or the browser.</p>
{{template "foot" .}}{{end}}

{{define "about"}}{{template "head" .}}<h1>About</h1>
<p>A local shell over the kanban API. Your session is shared with the kanban CLI.</p>
{{template "foot" .}}{{end}}

{{define "login"}}{{template "head" .}}<h1>Log in</h1>{{template "credentials" .}}{{template "foot" .}}{{end}}

{{define "register"}}{{template "head" .}}<h1>Register</h1>{{template "credentials" .}}{{template "foot" .}}{{end}}

{{define "dashboard"}}{{template "head" .}}<h1>Welcome{{with .User}}, {{.Username}}{{end}}</h1>
<p><a href="/projects">Your projects</a></p>
{{template "foot" .}}{{end}}

{{define "projects"}}{{template "head" .}}<h1>Projects</h1>
{{if .Projects}}<ul>{{range .Projects}}
  <li><a href="/projects/{{.ProjectID}}">{{.Name}}</a>{{if .Status}} ({{.Status}}){{end}}</li>{{end}}
</ul>{{else}}<p>No projects yet.</p>{{end}}
{{template "foot" .}}{{end}}

{{define "project"}}{{template "head" .}}{{with .Project}}<h1>{{.Name}}</h1>
{{if .Description}}<p>{{.Description}}</p>{{end}}
<dl>
  {{if .Status}}<dt>Status</dt><dd>{{.Status}}</dd>{{end}}
  {{if .RepoURL}}<dt>Repository</dt><dd><a href="{{.RepoURL}}">{{.RepoURL}}</a></dd>{{end}}
  {{if .SiteURL}}<dt>Site</dt><dd><a href="{{.SiteURL}}">{{.SiteURL}}</a></dd>{{end}}
  {{if .Dependencies}}<dt>Dependencies</dt><dd>{{range .Dependencies}}{{.}} {{end}}</dd>{{end}}
  {{if .DevDependencies}}<dt>Dev dependencies</dt><dd>{{range .DevDependencies}}{{.}} {{end}}</dd>{{end}}
</dl>{{end}}
{{template "foot" .}}{{end}}
`))

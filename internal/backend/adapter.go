// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides interfaces and implementations for communicating with the kanban API.
// It defines the API contract for account and project operations the CLI depends on.
// The package includes both the interface definition and an HTTP-based implementation.
package backend

import "context"

// Account is the identity returned by the auth endpoints.
type Account struct {
	UserID   string `json:"user_id"`
	Username string `json:"user_name"`
	// Token is only set by Login.
	Token string `json:"token,omitempty"`
}

// Project is a kanban project as served by /api/v1/projects.
type Project struct {
	ProjectID       int      `json:"project_id,omitempty"`
	Name            string   `json:"name,omitempty"`
	RepoURL         string   `json:"rebo_url,omitempty"`
	SiteURL         string   `json:"site_url,omitempty"`
	Description     string   `json:"description,omitempty"`
	Dependencies    []string `json:"dependencies,omitempty"`
	DevDependencies []string `json:"dev_dependencies,omitempty"`
	Status          string   `json:"status,omitempty"`
}

// API defines backend operations the CLI depends on.
// Implementations may call real HTTP endpoints or provide mocks for tests.
type API interface {
	// Login exchanges credentials for an account and a session token.
	Login(ctx context.Context, username, password string) (Account, error)
	// Register creates an account. The response carries no token.
	Register(ctx context.Context, username, password string) (Account, error)
	// ListProjects returns the projects visible to the token's user.
	ListProjects(ctx context.Context, token string) ([]Project, error)
	// GetProject returns a single project.
	GetProject(ctx context.Context, token string, id int) (Project, error)
}

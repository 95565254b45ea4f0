// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"net/http"
	"strconv"
)

// ListProjects calls GET /api/v1/projects with the session token.
func (h *HTTP) ListProjects(ctx context.Context, token string) ([]Project, error) {
	var projects []Project
	if err := h.do(ctx, http.MethodGet, pathProjects, token, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject calls GET /api/v1/projects/{id} with the session token.
func (h *HTTP) GetProject(ctx context.Context, token string, id int) (Project, error) {
	var p Project
	if err := h.do(ctx, http.MethodGet, pathProjects+"/"+strconv.Itoa(id), token, nil, &p); err != nil {
		return Project{}, err
	}
	return p, nil
}

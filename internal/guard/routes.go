// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

package guard

import (
	"slices"
	"strings"
)

// Kind classifies a path for access control.
type Kind int

const (
	// KindOpen paths are reachable in any session state.
	KindOpen Kind = iota
	// KindPrivate paths require an authenticated session.
	KindPrivate
	// KindAuthOnly paths (login, register) make no sense once authenticated.
	KindAuthOnly
)

func (k Kind) String() string {
	switch k {
	case KindPrivate:
		return "private"
	case KindAuthOnly:
		return "auth-only"
	default:
		return "open"
	}
}

// Routes is the static route configuration.
type Routes struct {
	// Private holds path prefixes that require authentication.
	Private []string
	// AuthOnly holds exact paths that are only for unauthenticated users.
	AuthOnly []string
	// LoginPath is where unauthenticated users are sent.
	LoginPath string
	// HomePath is where authenticated users are sent.
	HomePath string
}

// DefaultRoutes returns the kanban route table.
func DefaultRoutes() Routes {
	return Routes{
		Private:   []string{"/dashboard", "/projects"},
		AuthOnly:  []string{"/login", "/register"},
		LoginPath: "/login",
		HomePath:  "/dashboard",
	}
}

// Classify returns the kind of path. Private prefixes are checked before
// auth-only paths.
func (r Routes) Classify(path string) Kind {
	for _, prefix := range r.Private {
		if strings.HasPrefix(path, prefix) {
			return KindPrivate
		}
	}
	if slices.Contains(r.AuthOnly, path) {
		return KindAuthOnly
	}
	return KindOpen
}

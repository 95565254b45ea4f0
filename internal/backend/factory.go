// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import "go.uber.org/zap"

// New creates a backend API implementation for the API at baseURL.
// Returns HTTP client (real backend).
func New(baseURL string, logger *zap.Logger) API {
	return newHTTP(baseURL, logger)
}

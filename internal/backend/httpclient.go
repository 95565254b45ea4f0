// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	kerrors "kanban/cli/internal/errors"
	"kanban/cli/internal/logging"

	"go.uber.org/zap"
)

// API paths.
const (
	pathLogin    = "/api/v1/auth/login"
	pathRegister = "/api/v1/auth/register"
	pathProjects = "/api/v1/projects"
)

// HTTP implements API over the kanban REST endpoints.
type HTTP struct {
	// baseURL is the base URL for all HTTP requests (e.g., "http://localhost:4000")
	baseURL string
	// client is the underlying HTTP client with configured timeout
	client *http.Client
	logger *zap.Logger
}

// newHTTP creates a new HTTP client with the given base URL.
// It configures a 10-second timeout for all requests.
func newHTTP(baseURL string, logger *zap.Logger) *HTTP {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger.Named("backend"),
	}
}

// errorResponse is the error body written by the API.
type errorResponse struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

// do sends a JSON request and decodes a JSON response into out when out is non-nil.
func (h *HTTP) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "kanban-cli/1.0")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	h.logger.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// Some endpoints answer 200 with an empty body.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// statusError converts a non-2xx response into a typed error.
func statusError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	msg := strings.TrimSpace(string(b))
	var er errorResponse
	if json.Unmarshal(b, &er) == nil && er.Message != "" {
		msg = er.Message
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	msg = logging.Mask(msg)

	if resp.StatusCode == http.StatusUnauthorized {
		return kerrors.New(kerrors.Unauthorized, msg)
	}
	return kerrors.Wrap(kerrors.BackendRequest, msg, &StatusError{Code: resp.StatusCode})
}

// StatusError carries the HTTP status of a failed request.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Code)
}

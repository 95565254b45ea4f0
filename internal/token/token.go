// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package token reads the claims of a session token for display.
//
// Nothing here verifies a signature: the CLI holds no key and the API remains the
// only authority on whether a token is valid. Opaque (non-JWT) tokens are reported
// as such.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaque is returned for tokens that are not JWTs.
var ErrOpaque = errors.New("token is not a JWT")

// Claims mirrors the claims issued by the kanban API.
type Claims struct {
	Username string `json:"user_name"`
	UserID   string `json:"user_id"`
	jwt.RegisteredClaims
}

// Info is the displayable content of a token.
type Info struct {
	Username  string
	UserID    string
	ExpiresAt time.Time
	Algorithm string
}

// Expired reports whether the token carries an expiry before now.
func (i Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// Inspect decodes the claims of raw without verifying it.
func Inspect(raw string) (Info, error) {
	var c Claims
	t, _, err := jwt.NewParser().ParseUnverified(raw, &c)
	if err != nil {
		return Info{}, ErrOpaque
	}

	info := Info{
		Username:  c.Username,
		UserID:    c.UserID,
		Algorithm: t.Method.Alg(),
	}
	if c.ExpiresAt != nil {
		info.ExpiresAt = c.ExpiresAt.Time
	}
	return info, nil
}

// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging builds the CLI's structured logger and keeps secrets out of output.
// It includes functions for masking sensitive information in log messages and
// formatting errors for user-friendly display while protecting credentials and tokens.
package logging

import (
	"regexp"
	"strings"
)

var (
	rePassword = regexp.MustCompile(`(?i)("?password"?\s*[=:]\s*"?)([^\s;",}]+)`)
	reToken    = regexp.MustCompile(`(?i)(token=|bearer\s+)([A-Za-z0-9._-]+)`)
	reJSONTok  = regexp.MustCompile(`(?i)("token"\s*:\s*")([^"]+)`)
	reJWT      = regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*`)
)

// Mask replaces sensitive values in the input string with "***".
func Mask(s string) string {
	out := s
	out = rePassword.ReplaceAllString(out, "${1}***")
	out = reToken.ReplaceAllString(out, "${1}***")
	out = reJSONTok.ReplaceAllString(out, "${1}***")
	out = reJWT.ReplaceAllString(out, "***")
	return out
}

// MaskToken keeps the first and last characters of a token for recognition.
func MaskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + "…" + token[len(token)-4:]
}

// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"errors"
	"net/http"
)

type credentials struct {
	Username string `json:"user_name"`
	Password string `json:"password"`
}

// Login calls POST /api/v1/auth/login and returns the account with its token.
func (h *HTTP) Login(ctx context.Context, username, password string) (Account, error) {
	var acc Account
	if err := h.do(ctx, http.MethodPost, pathLogin, "", credentials{username, password}, &acc); err != nil {
		return Account{}, err
	}
	if acc.Token == "" {
		return Account{}, errors.New("login response carried no token")
	}
	return acc, nil
}

// Register calls POST /api/v1/auth/register.
func (h *HTTP) Register(ctx context.Context, username, password string) (Account, error) {
	var acc Account
	if err := h.do(ctx, http.MethodPost, pathRegister, "", credentials{username, password}, &acc); err != nil {
		return Account{}, err
	}
	return acc, nil
}

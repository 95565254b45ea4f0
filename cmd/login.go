// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"time"

	"kanban/cli/internal/backend"
	kerrors "kanban/cli/internal/errors"
	"kanban/cli/internal/httperrors"
	"kanban/cli/internal/session"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var loginUsername string

// loginCmd authenticates with username and password and stores the session.
// It renders the /login route, so an authenticated user is sent to the dashboard.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Log in to the kanban API",
	Long: `The login command asks for your username and password, exchanges them with the
kanban API for a session token and stores the token in the OS keychain.

If you are already logged in, the dashboard is shown instead.`,
	Annotations: map[string]string{routeAnnotation: "/login"},
	Args:        cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		username := loginUsername
		if username == "" {
			if username, err = a.prompt.Line("Username"); err != nil {
				return err
			}
		}
		password, err := a.prompt.Password("Password")
		if err != nil {
			return err
		}

		var acct backend.Account
		err = withSpinner("Logging in", func() error {
			acct, err = a.api.Login(ctx, username, password)
			return err
		})
		if err != nil {
			return a.apiFailure(err, "logging in")
		}

		if err := a.session().Login(session.User{UserID: acct.UserID, Username: acct.Username}, acct.Token); err != nil {
			return err
		}
		pterm.Println(getRandomLoginGreeting(acct.Username))
		return nil
	},
}

// apiFailure reports a failed API call to the user and returns the error.
func (a *app) apiFailure(err error, doing string) error {
	switch kerrors.KindOf(err) {
	case kerrors.Unauthorized:
		pterm.Println("❌ " + kerrors.Message(err))
		return err
	case kerrors.BackendRequest:
		if httperrors.Classify(err) != httperrors.CategoryServer {
			pterm.Println("❌ " + kerrors.Message(err))
			return err
		}
	}
	return httperrors.FormatNetworkError(err, doing, a.cfg.APIURL)
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
}

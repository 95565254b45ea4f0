// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// registerCmd creates an account. It renders the /register route.
var registerCmd = &cobra.Command{
	Use:         "register",
	Short:       "Create a kanban account",
	Annotations: map[string]string{routeAnnotation: "/register"},
	Args:        cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		username, err := a.prompt.Line("Username")
		if err != nil {
			return err
		}
		password, err := a.prompt.Password("Password")
		if err != nil {
			return err
		}
		confirm, err := a.prompt.Password("Repeat password")
		if err != nil {
			return err
		}
		if password != confirm {
			return errors.New("passwords do not match")
		}

		err = withSpinner("Creating account", func() error {
			_, err := a.api.Register(ctx, username, password)
			return err
		})
		if err != nil {
			return a.apiFailure(err, "creating your account")
		}

		pterm.Success.Printfln("Account %s created", username)
		pterm.Println("   Run 'kanban login' to sign in.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
}

// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// logoutCmd clears the session from memory and from the OS keychain.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved session",
	Long: `The logout command removes the session token and user from the OS keychain.
The kanban API keeps no server-side session, so nothing is sent to it.`,
	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp(cmd)
		if err != nil {
			return err
		}
		store := a.session()
		if !store.Get().IsAuthenticated() {
			printNotLoggedIn()
			return nil
		}
		if err := store.Logout(); err != nil {
			return err
		}
		pterm.Println("✅ Logged out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

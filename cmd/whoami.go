// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"time"

	"kanban/cli/internal/logging"
	"kanban/cli/internal/token"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// whoamiCmd shows the session held locally. It does not contact the API.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show current authenticated account",
	Long: `The whoami command displays the account of the saved session together with the
token's expiry when the token carries one. The token itself is never printed in full.`,
	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp(cmd)
		if err != nil {
			return err
		}
		s := a.session().Get()
		if !s.IsAuthenticated() {
			printNotLoggedIn()
			return nil
		}

		name := "unknown"
		if s.User != nil {
			name = s.User.Username
		}
		pterm.Printfln("👤 Current user: %s", name)
		if s.User != nil {
			pterm.Printfln("   User ID: %s", s.User.UserID)
		}
		pterm.Printfln("   Token:   %s", logging.MaskToken(s.Token))

		info, err := token.Inspect(s.Token)
		if err != nil {
			return nil
		}
		switch {
		case info.ExpiresAt.IsZero():
		case info.Expired(time.Now()):
			pterm.Warning.Printfln("Token expired at %s. Run 'kanban login' again.", info.ExpiresAt.Local().Format(time.RFC1123))
		default:
			pterm.Printfln("   Expires: %s", info.ExpiresAt.Local().Format(time.RFC1123))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

// openCmd navigates to an arbitrary route, as following a link would.
var openCmd = &cobra.Command{
	Use:   "open PATH",
	Short: "Navigate to a route such as /dashboard or /projects/3",
	Long: `The open command navigates to PATH. The navigation guard decides first: private
routes need a session, and /login or /register send a logged-in user to the dashboard.
The command registered for the final route then runs.`,
	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp(cmd)
		if err != nil {
			return err
		}
		path := args[0]
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return a.navigate(cmd.Context(), path)
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}

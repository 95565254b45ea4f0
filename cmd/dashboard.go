// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:         "dashboard",
	Short:       "Show your dashboard",
	Annotations: map[string]string{routeAnnotation: "/dashboard"},
	Args:        cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp(cmd)
		if err != nil {
			return err
		}
		s := a.session().Get()

		name := "there"
		if s.User != nil {
			name = s.User.Username
		}
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Dashboard")).
			WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).
			Println("Welcome, " + name + "!\n\nkanban projects     list your projects\nkanban projects ID  show one project\nkanban serve        open the browser shell")
		return nil
	},
}

var aboutCmd = &cobra.Command{
	Use:         "about",
	Short:       "About the kanban CLI",
	Annotations: map[string]string{routeAnnotation: "/about"},
	Args:        cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.Printfln("kanban %s", Version)
		pterm.Println("A command-line client for the kanban API.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(aboutCmd)
}

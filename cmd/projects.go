// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"kanban/cli/internal/backend"
	kerrors "kanban/cli/internal/errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// projectsCmd lists projects, or shows one when given an ID. It renders the
// /projects route and /projects/ID respectively.
var projectsCmd = &cobra.Command{
	Use:         "projects [ID]",
	Aliases:     []string{"project"},
	Short:       "List your projects or show one",
	Annotations: map[string]string{routeAnnotation: "/projects"},
	Args:        cobra.MaximumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		tok := a.session().Get().Token

		if len(args) == 1 {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("project ID must be a number, got %q", args[0])
			}
			var p backend.Project
			err = withSpinner("Loading project", func() error {
				p, err = a.api.GetProject(ctx, tok, id)
				return err
			})
			if err != nil {
				return a.projectsFailure(err)
			}
			printProject(p)
			return nil
		}

		var list []backend.Project
		err = withSpinner("Loading projects", func() error {
			list, err = a.api.ListProjects(ctx, tok)
			return err
		})
		if err != nil {
			return a.projectsFailure(err)
		}
		if len(list) == 0 {
			pterm.Println("No projects yet.")
			return nil
		}

		items := make([]pterm.BulletListItem, 0, len(list))
		for _, p := range list {
			text := fmt.Sprintf("#%d %s", p.ProjectID, p.Name)
			if p.Status != "" {
				text += pterm.NewStyle(pterm.FgGray).Sprintf(" (%s)", p.Status)
			}
			items = append(items, pterm.BulletListItem{Level: 0, Text: text})
		}
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint("Projects"))
		_ = pterm.DefaultBulletList.WithItems(items).Render()
		return nil
	},
}

// projectsFailure ends the session when the API rejects the token.
func (a *app) projectsFailure(err error) error {
	if kerrors.Is(err, kerrors.Unauthorized) {
		if lerr := a.session().Logout(); lerr != nil {
			return lerr
		}
		pterm.Warning.Println("Your session is no longer valid and was removed. Run 'kanban login' again.")
		return err
	}
	return a.apiFailure(err, "loading projects")
}

func printProject(p backend.Project) {
	var b strings.Builder
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Description)
	}
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%-17s %s\n", label+":", value)
		}
	}
	row("Status", p.Status)
	row("Repository", p.RepoURL)
	row("Site", p.SiteURL)
	row("Dependencies", strings.Join(p.Dependencies, ", "))
	row("Dev dependencies", strings.Join(p.DevDependencies, ", "))

	pterm.DefaultBox.
		WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprintf("#%d %s", p.ProjectID, p.Name)).
		WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).
		Println(strings.TrimRight(b.String(), "\n"))
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}

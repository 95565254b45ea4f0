// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the Kanban CLI application.
// It implements subcommands for authentication, projects and configuration using the
// Cobra CLI framework. Commands that render a route are gated by the navigation guard:
// a vetoed command does not run and the command for the redirect target runs instead.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"kanban/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	showVersion bool
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands.
// It serves as the entry point for the Kanban CLI application.
var rootCmd = &cobra.Command{
	Use:           "kanban",
	Short:         "Kanban CLI for your projects",
	Long:          `Kanban is a command-line client for the kanban API. It keeps your session in the OS keychain and can serve a local browser shell.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		slot := slotFrom(cmd.Context())
		if slot == nil {
			slot = &appSlot{}
			cmd.SetContext(withAppSlot(cmd.Context(), slot))
		}
		if slot.a == nil {
			a, err := newApp(cmd.Root(), verbose)
			if err != nil {
				return err
			}
			slot.a = a
		}
		return slot.a.guardCommand(cmd.Context(), cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			printVersion(cmd.OutOrStdout())
			return nil
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// It executes the root command and handles any errors that occur during execution.
func Execute() {
	if err := execute(context.Background(), nil, os.Args[1:]); err != nil {
		pterm.Error.Println(logging.PresentError("", err))
		os.Exit(1)
	}
}

// execute runs rootCmd with args. A non-nil slot.a is used instead of building
// the app from configuration.
func execute(ctx context.Context, slot *appSlot, args []string) error {
	if slot == nil {
		slot = &appSlot{}
	}
	resetContexts(rootCmd)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(withAppSlot(ctx, slot))
	if slot.a != nil {
		slot.a.close()
	}
	if errors.Is(err, errNavigationVetoed) {
		return nil
	}
	return err
}

// resetContexts clears contexts left on subcommands by an earlier run; cobra
// only hands the root context down to commands that have none.
func resetContexts(c *cobra.Command) {
	c.SetContext(nil)
	for _, sub := range c.Commands() {
		resetContexts(sub)
	}
}

// mustApp returns the app attached by PersistentPreRunE.
func mustApp(cmd *cobra.Command) (*app, error) {
	a := appFrom(cmd.Context())
	if a == nil {
		return nil, fmt.Errorf("%s: %w", cmd.Name(), errNoApp)
	}
	return a, nil
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

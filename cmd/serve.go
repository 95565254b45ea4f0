// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"kanban/cli/internal/web"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var serveAddr string

// serveCmd runs the local browser shell until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser shell on localhost",
	Long: `The serve command starts a local web server with the same pages as the CLI:
/login, /register, /dashboard and /projects. It shares the session stored in the OS
keychain, so logging in from either side logs in both.`,
	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp(cmd)
		if err != nil {
			return err
		}
		addr := serveAddr
		if addr == "" {
			addr = a.cfg.ListenAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store := a.session()
		srv := web.New(store, a.api, a.guard, a.logger)
		pterm.Info.Printfln("Serving on http://%s (Ctrl+C to stop)", addr)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (defaults to listen_addr from config)")
	rootCmd.AddCommand(serveCmd)
}

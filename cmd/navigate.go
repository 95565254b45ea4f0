// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// routeAnnotation ties a command to the route it renders.
const routeAnnotation = "kanban/route"

// maxRedirects bounds redirect chains between routed commands.
const maxRedirects = 5

// errNavigationVetoed stops a command whose route was vetoed by the guard.
// The redirect target has already run; Execute treats it as success.
var errNavigationVetoed = errors.New("navigation vetoed")

type redirectDepthKey struct{}

func redirectDepth(ctx context.Context) int {
	n, _ := ctx.Value(redirectDepthKey{}).(int)
	return n
}

// routeOf returns the route a command invocation navigates to, or "" when the
// command is not routed. Positional arguments extend the route path.
func routeOf(c *cobra.Command, args []string) string {
	route := c.Annotations[routeAnnotation]
	if route == "" || len(args) == 0 {
		return route
	}
	return route + "/" + strings.Join(args, "/")
}

// findRoute returns the command registered for path and the trailing path
// segments as its arguments.
func findRoute(root *cobra.Command, path string) (*cobra.Command, []string) {
	var best *cobra.Command
	var bestRoute string
	var walk func(*cobra.Command)
	walk = func(c *cobra.Command) {
		if r := c.Annotations[routeAnnotation]; r != "" {
			if (path == r || strings.HasPrefix(path, r+"/")) && len(r) > len(bestRoute) {
				best, bestRoute = c, r
			}
		}
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(root)

	if best == nil {
		return nil, nil
	}
	rest := strings.Trim(strings.TrimPrefix(path, bestRoute), "/")
	if rest == "" {
		return best, nil
	}
	return best, strings.Split(rest, "/")
}

// guardCommand runs the guard for a routed command before it executes.
func (a *app) guardCommand(ctx context.Context, c *cobra.Command, args []string) error {
	route := routeOf(c, args)
	if route == "" {
		return nil
	}
	a.session()

	ctx = context.WithValue(ctx, redirectDepthKey{}, redirectDepth(ctx)+1)
	allowed, err := a.guard.HandleNavigate(ctx, nil, &url.URL{Path: route})
	if err != nil {
		return err
	}
	if !allowed {
		return errNavigationVetoed
	}
	return nil
}

// navigate performs a navigation to path: the guard decides, and an allowed
// destination runs the command registered for it. It is the guard's Navigator.
func (a *app) navigate(ctx context.Context, path string) error {
	depth := redirectDepth(ctx)
	if depth >= maxRedirects {
		return fmt.Errorf("too many redirects, stopped at %s", path)
	}
	ctx = context.WithValue(ctx, redirectDepthKey{}, depth+1)

	u, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	if depth > 0 {
		pterm.Info.Printfln("Redirecting to %s", u.Path)
	}

	a.session()
	allowed, err := a.guard.HandleNavigate(ctx, nil, u)
	if err != nil || !allowed {
		return err
	}
	return a.render(ctx, u.Path)
}

// render runs the command registered for path.
func (a *app) render(ctx context.Context, path string) error {
	if path == "" || path == "/" {
		return a.root.Help()
	}
	c, args := findRoute(a.root, path)
	if c == nil || c.RunE == nil {
		return fmt.Errorf("no command for %s", path)
	}
	a.logger.Debug("rendering route", zap.String("path", path), zap.String("command", c.Name()))

	c.SetContext(ctx)
	if c.Args != nil {
		if err := c.Args(c, args); err != nil {
			return err
		}
	}
	return c.RunE(c, args)
}

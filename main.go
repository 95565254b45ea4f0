// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package main is the entry point for the Kanban CLI application.
package main

import (
	"kanban/cli/cmd"
)

func main() {
	cmd.Execute()
}

// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package terminal provides prompts and small terminal helpers for interactive commands.
package terminal

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// defaultWidth is used when the terminal size cannot be determined.
const defaultWidth = 80

// ClearPreviousLines clears text that was previously printed to w.
// It calculates how many lines the text used at the current terminal width,
// then moves up and clears each line.
//
// This is used to remove a prompt and its answer once entered. textLength is the
// total number of characters of prompt plus input.
func ClearPreviousLines(w io.Writer, textLength int) {
	width := defaultWidth
	if f, ok := w.(*os.File); ok {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			width = cols
		}
	}

	// After Enter the cursor sits on a new line below the input.
	n := linesFor(textLength, width) + 1
	for i := 0; i < n; i++ {
		fmt.Fprint(w, "\r\x1b[2K")
		if i < n-1 {
			fmt.Fprint(w, "\x1b[1A")
		}
	}
}

// linesFor returns how many rows textLength characters occupy at width columns.
func linesFor(textLength, width int) int {
	if width <= 0 {
		width = defaultWidth
	}
	lines := (textLength + width - 1) / width
	if lines < 1 {
		return 1
	}
	return lines
}

// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrEmptyInput is returned when a required answer is blank.
var ErrEmptyInput = errors.New("input required")

// Prompter asks questions on Out and reads answers from In.
type Prompter struct {
	in  io.Reader
	r   *bufio.Reader
	out io.Writer
}

// NewPrompter creates a Prompter. When in is a terminal, passwords are read
// without echo.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, r: bufio.NewReader(in), out: out}
}

// Line asks for a single line of text. Surrounding whitespace is trimmed and an
// empty answer yields ErrEmptyInput.
func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	s, err := p.readLine()
	if err != nil {
		return "", err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyInput
	}
	return s, nil
}

// Password asks for a secret. The answer is not trimmed beyond the line ending.
func (p *Prompter) Password(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)

	var s string
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		s = string(b)
	} else {
		line, err := p.readLine()
		if err != nil {
			return "", err
		}
		s = line
	}

	if s == "" {
		return "", ErrEmptyInput
	}
	return s, nil
}

func (p *Prompter) readLine() (string, error) {
	s, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

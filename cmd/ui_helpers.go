// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"math/rand"
	"os"

	"kanban/cli/internal/terminal"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
)

// withSpinner shows a spinner with text while fn runs. The spinner is removed
// when fn returns. Non-interactive output gets no animation.
func withSpinner(text string, fn func() error) error {
	if !terminal.IsInteractive(os.Stdout) {
		return fn()
	}

	cursor.Hide()
	defer cursor.Show()

	spinner, err := pterm.DefaultSpinner.
		WithRemoveWhenDone(true).
		WithSequence("|", "/", "-", "\\").
		Start(text)
	if err != nil {
		return fn()
	}
	defer func() { _ = spinner.Stop() }()

	return fn()
}

// getRandomLoginGreeting returns a random greeting phrase with the user's name.
func getRandomLoginGreeting(username string) string {
	greetings := []string{
		"🎉 Welcome back, %s!",
		"✨ Great to see you, %s!",
		"🚀 You're all set, %s!",
		"👋 Hello %s! Ready to ship?",
		"🌟 Welcome aboard, %s!",
		"🎯 You're in, %s!",
	}
	return fmt.Sprintf(greetings[rand.Intn(len(greetings))], username)
}

func printNotLoggedIn() {
	pterm.Println("🔒 You're not logged in yet!")
	pterm.Println("   Run 'kanban login' to get started.")
}

// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages, so commands can decide how to present a failure
// (for example, suggesting `kanban login` on an unauthorized response).
//
// The package supports wrapping underlying errors while maintaining error kind information.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// StorageUnavailable indicates the OS credential store could not be opened.
	StorageUnavailable Kind = "storage_unavailable"
	// StorageWrite indicates a durable session write or delete failed.
	StorageWrite Kind = "storage_write"
	// NotReady indicates the session never left its loading state in time.
	NotReady Kind = "not_ready"
	// NavigationFailed indicates a redirect could not be performed.
	NavigationFailed Kind = "navigation_failed"
	// BackendRequest indicates the kanban API returned an error.
	BackendRequest Kind = "backend_request"
	// Unauthorized indicates the kanban API rejected the session token.
	Unauthorized Kind = "unauthorized"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Message returns the message of the first *E in err's chain for display,
// falling back to err.Error().
func Message(err error) string {
	var e *E
	if stderrors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}

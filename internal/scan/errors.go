package scan

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreachable means no page of the site could be audited.
	ErrUnreachable = errors.New("site unreachable")
	// ErrBrowserLaunch means the renderer could not be started.
	ErrBrowserLaunch = errors.New("browser launch failed")
	// ErrPanic wraps a recovered panic.
	ErrPanic = errors.New("scan panicked")
)

// ValidationError rejects a request before any crawl starts.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// PageError is a failure confined to one URL.
type PageError struct {
	URL   string
	Stage string
	Err   error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.URL, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

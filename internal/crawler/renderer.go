package crawler

import (
	"context"
	"time"
)

// Renderer is a running browser shared by one scan. Each NewPage call opens an
// isolated context; Close releases the browser itself.
type Renderer interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is one isolated rendering context. Close must be called on every path.
type Page interface {
	// Navigate loads url and waits for the load event, bounded by timeout.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// URL returns the document URL after redirects.
	URL(ctx context.Context) string
	// HTML returns the rendered document markup.
	HTML(ctx context.Context) (string, error)
	// InjectScript adds an inline script to the loaded document.
	InjectScript(ctx context.Context, source string) error
	// Eval runs a JS function expression (awaiting promises) and returns its
	// JSON-encoded result.
	Eval(ctx context.Context, js string, args ...any) ([]byte, error)
	// Screenshot captures the current viewport as PNG.
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// LaunchFunc starts a Renderer for one scan.
type LaunchFunc func(ctx context.Context) (Renderer, error)

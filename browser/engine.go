package browser

import "context"

// Engine is a running browser process shared across requests.
type Engine interface {
	// Connected reports whether the browser process still answers.
	Connected(ctx context.Context) bool

	// NewSession opens an isolated browsing context with a single page.
	NewSession(ctx context.Context) (Session, error)

	// Close terminates the browser process.
	Close() error
}

// Session is an isolated browsing context (own cookies, cache and storage)
// holding one page. It belongs to exactly one request and must be closed by
// that request.
type Session interface {
	// Navigate loads url and returns once DOMContentLoaded has fired.
	Navigate(ctx context.Context, url string) error

	// WaitVisible blocks until an element matching selector is visible.
	WaitVisible(ctx context.Context, selector string) error

	// OuterHTML returns the outer HTML of the first element matching selector.
	// found is false when nothing matches.
	OuterHTML(ctx context.Context, selector string) (html string, found bool, err error)

	// HTML returns the full rendered page markup.
	HTML(ctx context.Context) (string, error)

	// BodyText returns the visible text of <body>.
	BodyText(ctx context.Context) (string, error)

	// URL returns the current page URL, or "" when it cannot be read.
	URL(ctx context.Context) string

	// Close disposes the page and its browsing context.
	Close() error
}

// LaunchFunc starts a new browser process.
type LaunchFunc func(ctx context.Context) (Engine, error)

// Package browsertest provides in-memory browser.Engine and browser.Session
// implementations for tests that must not start Chromium.
package browsertest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/use-agent/searchmcp/browser"
)

// Page describes what a fake session serves.
type Page struct {
	// HTML is returned by Session.HTML.
	HTML string

	// Elements maps selectors to the outer HTML returned by OuterHTML.
	// A selector missing from the map matches nothing.
	Elements map[string]string

	// BodyText is returned by Session.BodyText unless BodyErr is set.
	BodyText string
	BodyErr  error

	// FinalURL is returned by Session.URL. Empty means "unreadable".
	FinalURL string

	// NavigateErr is returned by Navigate. BlockNavigate makes Navigate wait
	// for the context to expire instead.
	NavigateErr   error
	BlockNavigate bool

	// WaitErr is returned by WaitVisible. BlockWait waits for the context.
	WaitErr   error
	BlockWait bool
}

// Engine is a fake browser.Engine. All sessions it opens serve Page.
type Engine struct {
	Page Page

	// SessionErr is returned by NewSession when set.
	SessionErr error

	mu           sync.Mutex
	disconnected bool
	sessions     []*Session

	closes atomic.Int32
}

var _ browser.Engine = (*Engine)(nil)

// Disconnect makes Connected report false from now on.
func (e *Engine) Disconnect() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disconnected = true
}

func (e *Engine) Connected(context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.disconnected
}

func (e *Engine) NewSession(context.Context) (browser.Session, error) {
	if e.SessionErr != nil {
		return nil, e.SessionErr
	}
	s := &Session{page: e.Page}
	e.mu.Lock()
	e.sessions = append(e.sessions, s)
	e.mu.Unlock()
	return s, nil
}

func (e *Engine) Close() error {
	e.closes.Add(1)
	return nil
}

// Closes reports how many times Close was called.
func (e *Engine) Closes() int {
	return int(e.closes.Load())
}

// Sessions returns every session opened so far.
func (e *Engine) Sessions() []*Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Session, len(e.sessions))
	copy(out, e.sessions)
	return out
}

// Session is a fake browser.Session.
type Session struct {
	page   Page
	closes atomic.Int32
}

var _ browser.Session = (*Session)(nil)

func (s *Session) Navigate(ctx context.Context, _ string) error {
	if s.page.BlockNavigate {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.page.NavigateErr
}

func (s *Session) WaitVisible(ctx context.Context, selector string) error {
	if s.page.BlockWait {
		<-ctx.Done()
		return ctx.Err()
	}
	if s.page.WaitErr != nil {
		return s.page.WaitErr
	}
	if _, ok := s.page.Elements[selector]; !ok {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (s *Session) OuterHTML(_ context.Context, selector string) (string, bool, error) {
	html, ok := s.page.Elements[selector]
	return html, ok, nil
}

func (s *Session) HTML(context.Context) (string, error) {
	return s.page.HTML, nil
}

func (s *Session) BodyText(context.Context) (string, error) {
	if s.page.BodyErr != nil {
		return "", s.page.BodyErr
	}
	return s.page.BodyText, nil
}

func (s *Session) URL(context.Context) string {
	return s.page.FinalURL
}

func (s *Session) Close() error {
	s.closes.Add(1)
	return nil
}

// Closes reports how many times Close was called.
func (s *Session) Closes() int {
	return int(s.closes.Load())
}

// Launcher returns a browser.LaunchFunc that hands out engines built by
// newEngine and counts launches.
func Launcher(newEngine func() *Engine) (browser.LaunchFunc, *atomic.Int32) {
	var n atomic.Int32
	return func(context.Context) (browser.Engine, error) {
		n.Add(1)
		return newEngine(), nil
	}, &n
}

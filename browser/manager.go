package browser

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by Acquire after the manager has been closed.
var ErrClosed = errors.New("browser manager closed")

// Manager owns the single process-wide browser handle. The handle is launched
// on first use, reused by later calls and relaunched when it stops answering.
// It is safe for concurrent use.
type Manager struct {
	launch LaunchFunc

	mu     sync.Mutex
	engine Engine
	closed bool

	launches atomic.Int64
	running  atomic.Bool
}

// NewManager creates a Manager that starts browsers with launch.
func NewManager(launch LaunchFunc) *Manager {
	return &Manager{launch: launch}
}

// Acquire returns the shared browser, launching it if none is running or the
// current one has disconnected. Concurrent callers wait for a single launch.
func (m *Manager) Acquire(ctx context.Context) (Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	if m.engine != nil {
		if m.engine.Connected(ctx) {
			return m.engine, nil
		}
		slog.Warn("browser disconnected, relaunching")
		if err := m.engine.Close(); err != nil {
			slog.Debug("closing disconnected browser failed", "error", err)
		}
		m.engine = nil
		m.running.Store(false)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	eng, err := m.launch(ctx)
	if err != nil {
		return nil, err
	}
	m.engine = eng
	m.running.Store(true)
	n := m.launches.Add(1)
	slog.Info("browser launched", "launches", n)

	return eng, nil
}

// Launches reports how many browsers have been started so far.
func (m *Manager) Launches() int64 {
	return m.launches.Load()
}

// Running reports whether a browser handle is currently held. It does not
// probe the process and does not wait for an in-flight launch.
func (m *Manager) Running() bool {
	return m.running.Load()
}

// Close kills the browser, if any. Call this on graceful shutdown to prevent
// zombie Chrome processes. Later Acquire calls fail with ErrClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	if m.engine == nil {
		return nil
	}
	err := m.engine.Close()
	m.engine = nil
	m.running.Store(false)
	return err
}

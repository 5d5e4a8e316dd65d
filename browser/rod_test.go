package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/searchmcp/config"
)

func newRodManager(t *testing.T) *Manager {
	t.Helper()
	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("chromium not installed")
	}
	m := NewManager(NewRodLauncher(config.BrowserConfig{
		Headless:             true,
		NoSandbox:            true,
		BrowserBin:           bin,
		LaunchTimeout:        30 * time.Second,
		BlockedResourceTypes: []string{"Image"},
	}))
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestRodSession_RendersPage(t *testing.T) {
	m := newRodManager(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/final" {
			http.Redirect(w, r, "/final", http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><h1 id="title">Rendered</h1>
<script>document.body.insertAdjacentHTML("beforeend", '<p class="late">added by script</p>')</script>
</body></html>`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	eng, err := m.Acquire(ctx)
	require.NoError(t, err)
	sess, err := eng.NewSession(ctx)
	require.NoError(t, err)
	defer func() { assert.NoError(t, sess.Close()) }()

	require.NoError(t, sess.Navigate(ctx, srv.URL+"/start"))
	require.NoError(t, sess.WaitVisible(ctx, ".late"))

	html, found, err := sess.OuterHTML(ctx, "#title")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Contains(t, html, "Rendered")

	_, found, err = sess.OuterHTML(ctx, "#missing")
	require.NoError(t, err)
	assert.False(t, found)

	text, err := sess.BodyText(ctx)
	require.NoError(t, err)
	assert.Contains(t, text, "added by script")

	assert.Equal(t, srv.URL+"/final", sess.URL(ctx))
}

func TestRodSession_NavigationTimeout(t *testing.T) {
	m := newRodManager(t)

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	eng, err := m.Acquire(context.Background())
	require.NoError(t, err)
	sess, err := eng.NewSession(context.Background())
	require.NoError(t, err)
	defer func() { _ = sess.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	err = sess.Navigate(ctx, srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/searchmcp/browser"
	"github.com/use-agent/searchmcp/browser/browsertest"
	"github.com/use-agent/searchmcp/cleaner"
	"github.com/use-agent/searchmcp/models"
	"github.com/use-agent/searchmcp/scraper"
)

type fakeSearcher struct {
	result *models.SearchResult
	err    error
	got    *models.SearchRequest
}

func (f *fakeSearcher) Search(_ context.Context, req *models.SearchRequest) (*models.SearchResult, error) {
	f.got = req
	return f.result, f.err
}

type fakeSitemaps struct {
	result *models.MapResult
	err    error
	got    *models.MapRequest
}

func (f *fakeSitemaps) Read(_ context.Context, req *models.MapRequest) (*models.MapResult, error) {
	f.got = req
	return f.result, f.err
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	assert.Equal(t, "text", tc.Type)
	return tc.Text
}

// scrapeFixture wires a real Scraper to a fake browser and counts launches.
func scrapeFixture(page browsertest.Page) (*Handlers, func() int32, func() []*browsertest.Session) {
	var eng *browsertest.Engine
	launch, launches := browsertest.Launcher(func() *browsertest.Engine {
		eng = &browsertest.Engine{Page: page}
		return eng
	})
	m := browser.NewManager(launch)
	h := NewHandlers(scraper.NewScraper(m, cleaner.NewCleaner()), &fakeSearcher{}, &fakeSitemaps{}, NewLocalizer("en"), 60000)
	sessions := func() []*browsertest.Session {
		if eng == nil {
			return nil
		}
		return eng.Sessions()
	}
	return h, launches.Load, sessions
}

const page = `<html><body><h1>Example Domain</h1><p>Hello.</p></body></html>`

func TestScrapeHandler_Markdown(t *testing.T) {
	h, _, sessions := scrapeFixture(browsertest.Page{HTML: page, FinalURL: "https://example.com/"})

	res, err := h.Scrape(context.Background(), callRequest("scrape", map[string]any{"url": "https://example.com"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	text := textOf(t, res)
	assert.Contains(t, text, "# Example Domain")
	assert.NotContains(t, text, "<html")
	require.Len(t, sessions(), 1)
	assert.Equal(t, 1, sessions()[0].Closes())
}

func TestScrapeHandler_HTML(t *testing.T) {
	h, _, _ := scrapeFixture(browsertest.Page{HTML: page})

	res, err := h.Scrape(context.Background(), callRequest("scrape", map[string]any{
		"url":          "https://example.com",
		"outputFormat": "html",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, textOf(t, res), "<html")
}

func TestScrapeHandler_InvalidInputNeverLaunches(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		wantMsg string
	}{
		{"not a url", map[string]any{"url": "not-a-url"}, "url must be a valid URL"},
		{"missing url", map[string]any{}, "url is required"},
		{"zero timeout", map[string]any{"url": "https://example.com", "timeout": 0}, "timeout must be greater than 0"},
		{"negative timeout", map[string]any{"url": "https://example.com", "timeout": -5}, "timeout must be greater than 0"},
		{"huge timeout", map[string]any{"url": "https://example.com", "timeout": 10_000_000_000_000}, "timeout must be at most 3600000"},
		{"bad format", map[string]any{"url": "https://example.com", "outputFormat": "pdf"}, "outputFormat must be one of [markdown, html]"},
		{"bad extract mode", map[string]any{"url": "https://example.com", "extractMode": "magic"}, "extractMode must be one of"},
		{"wrong type", map[string]any{"url": 42}, "invalid arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, launches, _ := scrapeFixture(browsertest.Page{HTML: page})

			res, err := h.Scrape(context.Background(), callRequest("scrape", tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)

			text := textOf(t, res)
			assert.Contains(t, text, "scrape error: ")
			assert.Contains(t, text, tt.wantMsg)
			assert.Zero(t, launches())
		})
	}
}

func TestScrapeHandler_Errors(t *testing.T) {
	tests := []struct {
		name string
		page browsertest.Page
		args map[string]any
		want string
	}{
		{
			name: "navigation",
			page: browsertest.Page{NavigateErr: errors.New("net::ERR_NAME_NOT_RESOLVED")},
			args: map[string]any{"url": "https://nonexistent.invalid"},
			want: "scrape error: navigation error: net::ERR_NAME_NOT_RESOLVED",
		},
		{
			name: "timeout",
			page: browsertest.Page{BlockNavigate: true},
			args: map[string]any{"url": "https://example.com", "timeout": 1},
			want: "scrape error: operation timed out (1ms)",
		},
		{
			name: "element not found",
			page: browsertest.Page{HTML: page},
			args: map[string]any{"url": "https://example.com", "selector": "#nope"},
			want: "scrape error: element not found: ",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, sessions := scrapeFixture(tt.page)

			res, err := h.Scrape(context.Background(), callRequest("scrape", tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, textOf(t, res), tt.want)

			require.Len(t, sessions(), 1)
			assert.Equal(t, 1, sessions()[0].Closes())
		})
	}
}

func TestScrapeHandler_Localized(t *testing.T) {
	launch, _ := browsertest.Launcher(func() *browsertest.Engine {
		return &browsertest.Engine{Page: browsertest.Page{BlockNavigate: true}}
	})
	sc := scraper.NewScraper(browser.NewManager(launch), cleaner.NewCleaner())
	h := NewHandlers(sc, &fakeSearcher{}, &fakeSitemaps{}, NewLocalizer("zh-TW"), 60000)

	res, err := h.Scrape(context.Background(), callRequest("scrape", map[string]any{"url": "https://example.com", "timeout": 1}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "抓取錯誤: 操作超時 (1ms)")
}

func TestSearchHandler(t *testing.T) {
	se := &fakeSearcher{result: &models.SearchResult{Items: []models.SearchItem{
		{Title: "Go", Link: "https://go.dev/", Snippet: "The Go programming language"},
		{Link: "https://pkg.go.dev/"},
	}}}
	h := NewHandlers(nil, se, &fakeSitemaps{}, nil, 60000)

	res, err := h.Search(context.Background(), callRequest("search", map[string]any{"query": "golang", "start": 11}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	assert.Equal(t, 10, se.got.Num)
	assert.Equal(t, 11, se.got.Start)
	assert.Equal(t, `Results for "golang" (items 11 to 12):

11. Go
   Link: https://go.dev/
   Snippet: The Go programming language

12. No title
   Link: https://pkg.go.dev/
   Snippet: No snippet

`, textOf(t, res))
}

func TestSearchHandler_Errors(t *testing.T) {
	tests := []struct {
		name string
		se   *fakeSearcher
		args map[string]any
		want string
	}{
		{"empty query", &fakeSearcher{}, map[string]any{"query": ""}, "search error: query is required"},
		{"num too large", &fakeSearcher{}, map[string]any{"query": "q", "num": 11}, "search error: num must be at most 10"},
		{"start too small", &fakeSearcher{}, map[string]any{"query": "q", "start": -1}, "search error: start must be at least 1"},
		{
			"not configured",
			&fakeSearcher{err: models.NewScrapeError(models.ErrCodeNotConfigured, "GOOGLE_API_KEY is not configured", nil)},
			map[string]any{"query": "q"},
			"search error: server is not configured: GOOGLE_API_KEY is not configured",
		},
		{
			"upstream",
			&fakeSearcher{err: models.NewScrapeError(models.ErrCodeUpstream, "search API error (status 403): API key not valid.", nil)},
			map[string]any{"query": "q"},
			"search error: search API error (status 403): API key not valid.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandlers(nil, tt.se, &fakeSitemaps{}, nil, 60000)
			res, err := h.Search(context.Background(), callRequest("search", tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Equal(t, tt.want, textOf(t, res))
		})
	}
}

func TestSearchHandler_NoResults(t *testing.T) {
	h := NewHandlers(nil, &fakeSearcher{result: &models.SearchResult{}}, &fakeSitemaps{}, nil, 60000)

	res, err := h.Search(context.Background(), callRequest("search", map[string]any{"query": "zzz"}))
	require.NoError(t, err)
	assert.Contains(t, textOf(t, res), "No results found.")
}

func TestMapHandler(t *testing.T) {
	sm := &fakeSitemaps{result: &models.MapResult{
		Kind: models.SitemapURLSet,
		URLs: []string{"https://example.com/a", "https://example.com/b"},
	}}
	h := NewHandlers(nil, &fakeSearcher{}, sm, nil, 60000)

	res, err := h.Map(context.Background(), callRequest("map", map[string]any{
		"url":       "https://example.com/sitemap.xml",
		"recursive": true,
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.True(t, sm.got.Recursive)
	assert.Equal(t, "URLs parsed from https://example.com/sitemap.xml (2):\nhttps://example.com/a\nhttps://example.com/b", textOf(t, res))
}

func TestMapHandler_Errors(t *testing.T) {
	h := NewHandlers(nil, &fakeSearcher{}, &fakeSitemaps{}, nil, 60000)
	res, err := h.Map(context.Background(), callRequest("map", map[string]any{"url": "sitemap.xml"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "sitemap error: url must be a valid URL", textOf(t, res))

	h = NewHandlers(nil, &fakeSearcher{}, &fakeSitemaps{
		err: models.NewScrapeError(models.ErrCodeParse, "invalid sitemap XML: unexpected EOF", nil),
	}, NewLocalizer("zh-TW"), 60000)
	res, err = h.Map(context.Background(), callRequest("map", map[string]any{"url": "https://example.com/sitemap.xml"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "Sitemap 解析錯誤: invalid sitemap XML: unexpected EOF", textOf(t, res))
}

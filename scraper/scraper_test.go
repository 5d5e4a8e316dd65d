package scraper_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/searchmcp/browser"
	"github.com/use-agent/searchmcp/browser/browsertest"
	"github.com/use-agent/searchmcp/cleaner"
	"github.com/use-agent/searchmcp/models"
	"github.com/use-agent/searchmcp/scraper"
)

const examplePage = `<html><head><title>Example Domain</title></head><body>
<div id="main"><h1>Example Domain</h1><p>This domain is for use in illustrative examples in documents.</p></div>
</body></html>`

// fixedBrowsers always hands out the same engine.
type fixedBrowsers struct {
	engine *browsertest.Engine
	err    error
}

func (f fixedBrowsers) Acquire(context.Context) (browser.Engine, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.engine, nil
}

func newScraper(page browsertest.Page) (*scraper.Scraper, *browsertest.Engine) {
	eng := &browsertest.Engine{Page: page}
	return scraper.NewScraper(fixedBrowsers{engine: eng}, cleaner.NewCleaner()), eng
}

func request(url string, mutate ...func(*models.ScrapeRequest)) *models.ScrapeRequest {
	req := &models.ScrapeRequest{URL: url}
	for _, m := range mutate {
		m(req)
	}
	req.Defaults(models.DefaultScrapeTimeoutMs)
	return req
}

func ms(n int) *int { return &n }

func requireSingleClosedSession(t *testing.T, eng *browsertest.Engine) {
	t.Helper()
	sessions := eng.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, 1, sessions[0].Closes())
}

func TestScrape_Markdown(t *testing.T) {
	s, eng := newScraper(browsertest.Page{HTML: examplePage, FinalURL: "https://example.com/"})

	res, err := s.Scrape(context.Background(), request("https://example.com"))
	require.NoError(t, err)

	require.NotNil(t, res.Markdown)
	assert.Nil(t, res.HTML)
	assert.Contains(t, *res.Markdown, "Example Domain")
	assert.Contains(t, *res.Markdown, "illustrative examples")
	assert.NotContains(t, *res.Markdown, "<html")
	assert.Equal(t, "https://example.com/", res.URL)
	requireSingleClosedSession(t, eng)
}

func TestScrape_HTML(t *testing.T) {
	s, eng := newScraper(browsertest.Page{HTML: examplePage, FinalURL: "https://example.com/"})

	res, err := s.Scrape(context.Background(), request("https://example.com", func(r *models.ScrapeRequest) {
		r.OutputFormat = models.FormatHTML
	}))
	require.NoError(t, err)

	require.NotNil(t, res.HTML)
	assert.Nil(t, res.Markdown)
	assert.Contains(t, *res.HTML, "<html")
	requireSingleClosedSession(t, eng)
}

func TestScrape_Selector(t *testing.T) {
	s, _ := newScraper(browsertest.Page{
		HTML:     examplePage,
		Elements: map[string]string{"h1": "<h1>Example Domain</h1>"},
		FinalURL: "https://example.com/",
	})

	res, err := s.Scrape(context.Background(), request("https://example.com", func(r *models.ScrapeRequest) {
		r.Selector = "h1"
		r.OutputFormat = models.FormatHTML
	}))
	require.NoError(t, err)
	assert.Equal(t, "<h1>Example Domain</h1>", *res.HTML)
}

func TestScrape_ElementNotFound(t *testing.T) {
	s, eng := newScraper(browsertest.Page{HTML: examplePage})

	_, err := s.Scrape(context.Background(), request("https://example.com", func(r *models.ScrapeRequest) {
		r.Selector = "#does-not-exist"
	}))
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeNotFound, models.CodeOf(err))
	assert.Contains(t, err.Error(), "#does-not-exist")
	requireSingleClosedSession(t, eng)
}

func TestScrape_NavigationError(t *testing.T) {
	s, eng := newScraper(browsertest.Page{NavigateErr: errors.New("net::ERR_NAME_NOT_RESOLVED")})

	_, err := s.Scrape(context.Background(), request("https://nonexistent.invalid"))
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeNavigation, models.CodeOf(err))
	assert.Contains(t, err.Error(), "ERR_NAME_NOT_RESOLVED")
	requireSingleClosedSession(t, eng)
}

func TestScrape_NavigationTimeout(t *testing.T) {
	s, eng := newScraper(browsertest.Page{BlockNavigate: true})

	_, err := s.Scrape(context.Background(), request("https://example.com", func(r *models.ScrapeRequest) {
		r.Timeout = ms(1)
	}))
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeTimeout, models.CodeOf(err))
	assert.Contains(t, err.Error(), "1ms")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	requireSingleClosedSession(t, eng)
}

func TestScrape_WaitForSelectorTimeout(t *testing.T) {
	s, eng := newScraper(browsertest.Page{HTML: examplePage})

	_, err := s.Scrape(context.Background(), request("https://example.com", func(r *models.ScrapeRequest) {
		r.WaitForSelector = "#never"
		r.Timeout = ms(20)
	}))
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeTimeout, models.CodeOf(err))
	assert.Contains(t, err.Error(), "20ms")
	requireSingleClosedSession(t, eng)
}

func TestScrape_WaitForSelectorVisible(t *testing.T) {
	s, eng := newScraper(browsertest.Page{
		HTML:     examplePage,
		Elements: map[string]string{"#main": `<div id="main"></div>`},
	})

	_, err := s.Scrape(context.Background(), request("https://example.com", func(r *models.ScrapeRequest) {
		r.WaitForSelector = "#main"
	}))
	require.NoError(t, err)
	requireSingleClosedSession(t, eng)
}

func TestScrape_FinalURLFallsBackToRequest(t *testing.T) {
	s, _ := newScraper(browsertest.Page{HTML: examplePage})

	res, err := s.Scrape(context.Background(), request("https://example.com/start"))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/start", res.URL)
}

func TestScrape_TextMode(t *testing.T) {
	s, _ := newScraper(browsertest.Page{HTML: examplePage, BodyText: "Example Domain\nPlain body text"})

	res, err := s.Scrape(context.Background(), request("https://example.com", func(r *models.ScrapeRequest) {
		r.ExtractMode = models.ExtractText
		r.OutputFormat = models.FormatHTML
	}))
	require.NoError(t, err)
	assert.Equal(t, "Example Domain\nPlain body text", *res.HTML)
}

func TestScrape_TextModeFallsBackToHTML(t *testing.T) {
	s, _ := newScraper(browsertest.Page{HTML: examplePage, BodyErr: errors.New("no body")})

	res, err := s.Scrape(context.Background(), request("https://example.com", func(r *models.ScrapeRequest) {
		r.ExtractMode = models.ExtractText
		r.OutputFormat = models.FormatHTML
	}))
	require.NoError(t, err)
	assert.Equal(t, examplePage, *res.HTML)
}

func TestScrape_ReadabilityMode(t *testing.T) {
	para := strings.Repeat("Long readable sentences about the early history of hypertext documents. ", 15)
	page := `<html><head><title>Story</title></head><body>
<nav><a href="/">Home</a></nav>
<article><h1>Story</h1><p>` + para + `</p><p>` + para + `</p></article>
<footer>Copyright footer text</footer>
</body></html>`
	s, _ := newScraper(browsertest.Page{HTML: page, FinalURL: "https://example.com/story"})

	res, err := s.Scrape(context.Background(), request("https://example.com/story", func(r *models.ScrapeRequest) {
		r.ExtractMode = models.ExtractReadability
	}))
	require.NoError(t, err)
	assert.Contains(t, *res.Markdown, "Long readable sentences")
	assert.NotContains(t, *res.Markdown, "Copyright footer text")
}

func TestScrape_Idempotent(t *testing.T) {
	s, eng := newScraper(browsertest.Page{HTML: examplePage, FinalURL: "https://example.com/"})

	first, err := s.Scrape(context.Background(), request("https://example.com"))
	require.NoError(t, err)
	second, err := s.Scrape(context.Background(), request("https://example.com"))
	require.NoError(t, err)

	assert.Equal(t, *first.Markdown, *second.Markdown)
	for _, sess := range eng.Sessions() {
		assert.Equal(t, 1, sess.Closes())
	}
	assert.Len(t, eng.Sessions(), 2)
}

func TestScrape_LaunchFailure(t *testing.T) {
	s := scraper.NewScraper(fixedBrowsers{err: errors.New("chromium not found")}, cleaner.NewCleaner())

	_, err := s.Scrape(context.Background(), request("https://example.com"))
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeBrowserLaunch, models.CodeOf(err))
}

func TestScrape_SessionFailure(t *testing.T) {
	eng := &browsertest.Engine{SessionErr: errors.New("target closed")}
	s := scraper.NewScraper(fixedBrowsers{engine: eng}, cleaner.NewCleaner())

	_, err := s.Scrape(context.Background(), request("https://example.com"))
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeBrowserLaunch, models.CodeOf(err))
	assert.Empty(t, eng.Sessions())
}

func TestScrape_SharesOneBrowserThroughManager(t *testing.T) {
	launch, launches := browsertest.Launcher(func() *browsertest.Engine {
		return &browsertest.Engine{Page: browsertest.Page{HTML: examplePage}}
	})
	m := browser.NewManager(launch)
	defer m.Close()
	s := scraper.NewScraper(m, cleaner.NewCleaner())

	for range 3 {
		_, err := s.Scrape(context.Background(), request("https://example.com"))
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), launches.Load())
}

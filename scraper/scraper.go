package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/searchmcp/browser"
	"github.com/use-agent/searchmcp/cleaner"
	"github.com/use-agent/searchmcp/models"
)

// Browsers hands out the shared browser. *browser.Manager implements it.
type Browsers interface {
	Acquire(ctx context.Context) (browser.Engine, error)
}

// Scraper renders pages in the shared browser, one isolated session per
// request. It is safe for concurrent use.
type Scraper struct {
	browsers Browsers
	cleaner  *cleaner.Cleaner
}

// NewScraper creates a Scraper on top of the given browser source.
func NewScraper(browsers Browsers, cl *cleaner.Cleaner) *Scraper {
	return &Scraper{browsers: browsers, cleaner: cl}
}

// Scrape fetches req.URL and returns its content in the requested format.
// The request must already be validated and defaulted.
//
// Lifecycle (numbered steps match the inline comments):
//
//  1. Acquire browser     – shared handle, launched on first use
//  2. Open session        – fresh incognito context + page
//  3. DEFER: close        – runs exactly once on every exit path
//  4. Navigate            – until DOMContentLoaded, bounded by req.Timeout
//  5. Wait for selector   – optional, bounded by req.Timeout
//  6. Extract             – selector outer HTML, page HTML or body text
//  7. Final URL           – after redirects
//  8. Convert             – html pass-through or markdown
//  9. Validate output
//
// Every returned error is a *models.ScrapeError.
func (s *Scraper) Scrape(ctx context.Context, req *models.ScrapeRequest) (*models.ScrapeResult, error) {
	timeout := time.Duration(req.TimeoutMs()) * time.Millisecond

	// ── 1. Acquire browser ───────────────────────────────────────────
	eng, err := s.browsers.Acquire(ctx)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserLaunch, "failed to start browser", err)
	}

	// ── 2. Open session ──────────────────────────────────────────────
	sess, err := eng.NewSession(ctx)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserLaunch, "failed to open browser context", err)
	}

	// ── 3. CRITICAL DEFER: the session never outlives the request ────
	defer func() {
		if closeErr := sess.Close(); closeErr != nil {
			slog.Warn("cleanup: failed to close browser context",
				"url", req.URL, "error", closeErr,
			)
		}
	}()

	// ── 4. Navigate ──────────────────────────────────────────────────
	navCtx, cancelNav := context.WithTimeout(ctx, timeout)
	err = sess.Navigate(navCtx, req.URL)
	cancelNav()
	if err != nil {
		if isTimeout(err) {
			return nil, timeoutError(req.TimeoutMs(), err)
		}
		return nil, models.NewScrapeError(models.ErrCodeNavigation, err.Error(), err)
	}

	// ── 5. Wait for selector ─────────────────────────────────────────
	if req.WaitForSelector != "" {
		waitCtx, cancelWait := context.WithTimeout(ctx, timeout)
		err = sess.WaitVisible(waitCtx, req.WaitForSelector)
		cancelWait()
		if err != nil {
			return nil, models.NewScrapeError(
				models.ErrCodeTimeout,
				fmt.Sprintf("waiting for selector %q did not succeed within %dms", req.WaitForSelector, req.TimeoutMs()),
				err,
			)
		}
	}

	// ── 6. Extract ───────────────────────────────────────────────────
	content, err := s.extract(ctx, sess, req)
	if err != nil {
		return nil, err
	}

	// ── 7. Final URL ─────────────────────────────────────────────────
	finalURL := sess.URL(ctx)
	if finalURL == "" {
		finalURL = req.URL
	}

	if req.Selector == "" && req.ExtractMode == models.ExtractReadability {
		content, _ = cleaner.MainContent(content, finalURL)
	}

	// ── 8. Convert ───────────────────────────────────────────────────
	converted, err := s.cleaner.Convert(content, finalURL, req.OutputFormat)
	if err != nil {
		return nil, err
	}

	result := &models.ScrapeResult{URL: finalURL}
	if req.OutputFormat == models.FormatHTML {
		result.HTML = &converted
	} else {
		result.Markdown = &converted
	}

	// ── 9. Validate output ───────────────────────────────────────────
	if err := models.ValidateOutput(result); err != nil {
		return nil, err
	}

	slog.Info("scrape succeeded", "url", finalURL, "format", req.OutputFormat, "bytes", len(converted))
	return result, nil
}

// extract pulls the raw content selected by req out of the loaded page.
func (s *Scraper) extract(ctx context.Context, sess browser.Session, req *models.ScrapeRequest) (string, error) {
	if req.Selector != "" {
		html, found, err := sess.OuterHTML(ctx, req.Selector)
		if err != nil {
			return "", extractionError(req, "failed to query selector", err)
		}
		if !found {
			return "", models.NewScrapeError(
				models.ErrCodeNotFound,
				fmt.Sprintf("no element matches selector %q", req.Selector),
				nil,
			)
		}
		return html, nil
	}

	if req.ExtractMode == models.ExtractText {
		text, err := sess.BodyText(ctx)
		if err == nil {
			return text, nil
		}
		slog.Warn("could not read body text, falling back to page HTML",
			"url", req.URL, "error", err,
		)
	}

	html, err := sess.HTML(ctx)
	if err != nil {
		return "", extractionError(req, "failed to extract page HTML", err)
	}
	return html, nil
}

func extractionError(req *models.ScrapeRequest, msg string, err error) *models.ScrapeError {
	if isTimeout(err) {
		return timeoutError(req.TimeoutMs(), err)
	}
	return models.NewScrapeError(models.ErrCodeExtraction, msg, err)
}

func timeoutError(timeoutMs int, err error) *models.ScrapeError {
	return models.NewScrapeError(
		models.ErrCodeTimeout,
		fmt.Sprintf("operation did not finish within %dms", timeoutMs),
		err,
	)
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

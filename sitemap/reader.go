// Package sitemap downloads and parses XML sitemaps and sitemap indexes.
package sitemap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/use-agent/searchmcp/config"
	"github.com/use-agent/searchmcp/models"
)

// Reader resolves a sitemap URL into the URLs it lists. It is safe for
// concurrent use.
type Reader struct {
	client   *http.Client
	maxBytes int64
	maxDepth int
}

// NewReader creates a Reader. https requests present a Chrome TLS
// fingerprint; plain http uses the standard dialer.
func NewReader(cfg config.SitemapConfig) *Reader {
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 3
	}
	return &Reader{
		client:   newHTTPClient(cfg.Timeout),
		maxBytes: maxBytes,
		maxDepth: maxDepth,
	}
}

// Read downloads req.URL and returns the URLs it lists. For a sitemap index
// those are the child sitemaps, unless req.Recursive is set, in which case
// the children are followed (up to the configured depth) and their page
// URLs returned, without duplicates.
func (r *Reader) Read(ctx context.Context, req *models.MapRequest) (*models.MapResult, error) {
	doc, err := r.load(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	result := &models.MapResult{Kind: doc.Kind, URLs: doc.Locs}
	switch {
	case doc.Kind == models.SitemapUnknown:
		slog.Warn("unrecognised sitemap format", "url", req.URL)
		result.URLs = []string{}
	case doc.Kind == models.SitemapIndex && req.Recursive:
		w := &walker{
			reader:   r,
			seenMaps: map[string]struct{}{req.URL: {}},
			seenURLs: map[string]struct{}{},
			urls:     []string{},
		}
		w.children(ctx, doc.Locs, 1)
		if err := ctx.Err(); err != nil {
			return nil, models.NewScrapeError(models.ErrCodeTimeout, "sitemap traversal was interrupted", err)
		}
		result.URLs = w.urls
	}

	if err := models.ValidateOutput(result); err != nil {
		return nil, err
	}

	slog.Info("sitemap parsed", "url", req.URL, "kind", result.Kind, "urls", len(result.URLs))
	return result, nil
}

func (r *Reader) load(ctx context.Context, rawURL string) (*Document, error) {
	data, err := fetch(ctx, r.client, rawURL, r.maxBytes)
	if err != nil {
		return nil, downloadError(err)
	}
	return Parse(data)
}

func downloadError(err error) error {
	var se *StatusError
	if errors.As(err, &se) {
		return models.NewScrapeError(models.ErrCodeUpstream,
			fmt.Sprintf("failed to download sitemap (status %d)", se.StatusCode), err)
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return models.NewScrapeError(models.ErrCodeTimeout, "sitemap download timed out", err)
	}
	return models.NewScrapeError(models.ErrCodeUpstream, fmt.Sprintf("failed to download sitemap: %v", err), err)
}

// walker follows a sitemap index depth-first. Child failures are logged and
// skipped so one broken child does not hide the rest.
type walker struct {
	reader   *Reader
	seenMaps map[string]struct{}
	seenURLs map[string]struct{}
	urls     []string
}

func (w *walker) children(ctx context.Context, sitemaps []string, depth int) {
	for _, loc := range sitemaps {
		if ctx.Err() != nil {
			return
		}
		if _, ok := w.seenMaps[loc]; ok {
			continue
		}
		w.seenMaps[loc] = struct{}{}

		doc, err := w.reader.load(ctx, loc)
		if err != nil {
			slog.Warn("skipping child sitemap", "url", loc, "error", err)
			continue
		}

		switch doc.Kind {
		case models.SitemapURLSet:
			w.add(doc.Locs)
		case models.SitemapIndex:
			if depth >= w.reader.maxDepth {
				slog.Warn("sitemap index nested too deeply, not following", "url", loc, "depth", depth)
				continue
			}
			w.children(ctx, doc.Locs, depth+1)
		default:
			slog.Warn("unrecognised child sitemap format", "url", loc)
		}
	}
}

func (w *walker) add(locs []string) {
	for _, u := range locs {
		if _, ok := w.seenURLs[u]; ok {
			continue
		}
		w.seenURLs[u] = struct{}{}
		w.urls = append(w.urls, u)
	}
}

// Package search queries the Google Custom Search JSON API.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/use-agent/searchmcp/cache"
	"github.com/use-agent/searchmcp/config"
	"github.com/use-agent/searchmcp/models"
	"golang.org/x/time/rate"
)

// DefaultEndpoint is the Custom Search JSON API endpoint.
const DefaultEndpoint = "https://www.googleapis.com/customsearch/v1"

// Client calls the Custom Search API. It is safe for concurrent use.
type Client struct {
	http     *resty.Client
	apiKey   string
	cx       string
	endpoint string
	limiter  *rate.Limiter // nil means unthrottled
	results  *cache.Cache[*models.SearchResult]
}

// NewClient creates a Client from cfg. Missing credentials are reported by
// Search, not here, so the server can start without them.
func NewClient(cfg config.SearchConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		http: resty.New().
			SetHeader("User-Agent", "SearchMCP/1.0").
			SetHeader("Accept", "application/json").
			SetTimeout(timeout),
		apiKey:   strings.TrimSpace(cfg.APIKey),
		cx:       strings.TrimSpace(cfg.CX),
		endpoint: endpoint,
		results:  cache.New[*models.SearchResult](cfg.CacheTTL, cfg.CacheEntries),
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c
}

type apiResponse struct {
	Items []apiItem `json:"items"`
}

type apiItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	DisplayLink string `json:"displayLink"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Search runs req against the API. The request must already be validated
// and defaulted.
func (c *Client) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResult, error) {
	if c.apiKey == "" {
		return nil, models.NewScrapeError(models.ErrCodeNotConfigured, "GOOGLE_API_KEY is not configured", nil)
	}
	if c.cx == "" {
		return nil, models.NewScrapeError(models.ErrCodeNotConfigured, "GOOGLE_CX_ID is not configured", nil)
	}

	key := cache.Key(req.Query, strconv.Itoa(req.Num), strconv.Itoa(req.Start))
	if cached, ok := c.results.Get(key); ok {
		slog.Debug("search served from cache", "query", req.Query)
		return cached, nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, models.NewScrapeError(models.ErrCodeRateLimited, "search request was not sent", err)
		}
	}

	var (
		body   apiResponse
		apiErr apiError
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":   c.apiKey,
			"cx":    c.cx,
			"q":     req.Query,
			"num":   strconv.Itoa(req.Num),
			"start": strconv.Itoa(req.Start),
		}).
		SetResult(&body).
		SetError(&apiErr).
		Get(c.endpoint)
	if err != nil {
		// The request URL carries the API key; keep only the cause.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		var ne net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
			return nil, models.NewScrapeError(models.ErrCodeTimeout, "search API did not respond in time", err)
		}
		return nil, models.NewScrapeError(models.ErrCodeUpstream, fmt.Sprintf("search API request failed: %v", err), err)
	}
	if resp.IsError() {
		msg := strings.TrimSpace(apiErr.Error.Message)
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		slog.Warn("search API returned an error", "status", resp.StatusCode(), "message", msg)
		return nil, models.NewScrapeError(models.ErrCodeUpstream,
			fmt.Sprintf("search API error (status %d): %s", resp.StatusCode(), msg), nil)
	}

	result := &models.SearchResult{Items: make([]models.SearchItem, 0, len(body.Items))}
	for _, it := range body.Items {
		result.Items = append(result.Items, models.SearchItem{
			Title:       it.Title,
			Link:        it.Link,
			Snippet:     it.Snippet,
			DisplayLink: it.DisplayLink,
		})
	}

	if err := models.ValidateOutput(result); err != nil {
		return nil, err
	}

	c.results.Set(key, result)
	slog.Info("search completed", "query", req.Query, "items", len(result.Items))
	return result, nil
}

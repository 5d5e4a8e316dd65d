package models

// ScrapeResult is the structured output of the scrape tool.
// Exactly one of Markdown and HTML is set, according to the requested format.
type ScrapeResult struct {
	Markdown *string `json:"markdown,omitempty"`
	HTML     *string `json:"html,omitempty"`

	// URL is the final URL after following all redirects.
	URL string `json:"url" validate:"required,url"`
}

// Content returns whichever of Markdown or HTML is set.
func (r *ScrapeResult) Content() string {
	switch {
	case r.Markdown != nil:
		return *r.Markdown
	case r.HTML != nil:
		return *r.HTML
	default:
		return ""
	}
}

// SearchItem is a single search hit.
type SearchItem struct {
	Title       string `json:"title,omitempty"`
	Link        string `json:"link,omitempty" validate:"omitempty,url"`
	Snippet     string `json:"snippet,omitempty"`
	DisplayLink string `json:"displayLink,omitempty"`
}

// SearchResult is the structured output of the search tool.
type SearchResult struct {
	Items []SearchItem `json:"items" validate:"dive"`
}

// Sitemap kinds reported by MapResult.
const (
	SitemapURLSet  = "urlset"
	SitemapIndex   = "sitemapindex"
	SitemapUnknown = "unknown"
)

// MapResult is the structured output of the map tool.
type MapResult struct {
	URLs []string `json:"urls" validate:"dive,url"`
	Kind string   `json:"kind"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status         string `json:"status"` // "healthy" or "idle"
	Uptime         string `json:"uptime"`
	BrowserRunning bool   `json:"browser_running"`
	BrowserLaunch  int64  `json:"browser_launches"`
	Version        string `json:"version"`
}

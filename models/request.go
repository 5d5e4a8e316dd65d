package models

// Output formats accepted by the scrape tool.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Extraction modes accepted by the scrape tool.
const (
	ExtractFull        = "full"
	ExtractText        = "text"
	ExtractReadability = "readability"
)

// DefaultScrapeTimeoutMs is used when neither the caller nor the
// configuration supplies a timeout.
const DefaultScrapeTimeoutMs = 60000

// MaxScrapeTimeoutMs is the largest accepted timeout: one hour.
const MaxScrapeTimeoutMs = 3_600_000

// ScrapeRequest is the input of the scrape tool.
type ScrapeRequest struct {
	// URL is the target page to scrape. Required, absolute.
	URL string `json:"url" validate:"required,url"`

	// Selector limits extraction to the outer HTML of the first matching element.
	Selector string `json:"selector,omitempty"`

	// WaitForSelector blocks until a matching element is visible.
	WaitForSelector string `json:"waitForSelector,omitempty"`

	// Timeout bounds navigation and selector waiting, in milliseconds.
	// Nil means the configured default (60000); an explicit value must be
	// in 1..MaxScrapeTimeoutMs.
	Timeout *int `json:"timeout,omitempty" validate:"required,gt=0,lte=3600000"`

	// OutputFormat is "markdown" (default) or "html".
	OutputFormat string `json:"outputFormat" validate:"oneof=markdown html"`

	// ExtractMode controls what is extracted when no Selector is given.
	// "full" (default): the full rendered page markup.
	// "text": the visible text of <body>, falling back to full markup.
	// "readability": the main article found by go-readability.
	ExtractMode string `json:"extractMode" validate:"oneof=full text readability"`
}

// Defaults applies default values to unset fields.
func (r *ScrapeRequest) Defaults(defaultTimeoutMs int) {
	if r.Timeout == nil {
		if defaultTimeoutMs <= 0 {
			defaultTimeoutMs = DefaultScrapeTimeoutMs
		}
		r.Timeout = &defaultTimeoutMs
	}
	if r.OutputFormat == "" {
		r.OutputFormat = FormatMarkdown
	}
	if r.ExtractMode == "" {
		r.ExtractMode = ExtractFull
	}
}

// TimeoutMs returns the timeout in milliseconds, or 0 when unset.
func (r *ScrapeRequest) TimeoutMs() int {
	if r.Timeout == nil {
		return 0
	}
	return *r.Timeout
}

// SearchRequest is the input of the search tool.
type SearchRequest struct {
	// Query is the search query. Required, non-empty.
	Query string `json:"query" validate:"required,min=1"`

	// Num is the number of results to return (1-10). Default: 10.
	Num int `json:"num" validate:"min=1,max=10"`

	// Start is the 1-based index of the first result (paging). Default: 1.
	Start int `json:"start" validate:"min=1"`
}

// Defaults applies default values to unset fields.
func (r *SearchRequest) Defaults() {
	if r.Num == 0 {
		r.Num = 10
	}
	if r.Start == 0 {
		r.Start = 1
	}
}

// MapRequest is the input of the map tool.
type MapRequest struct {
	// URL is the sitemap (or sitemap index) location. Required, absolute.
	URL string `json:"url" validate:"required,url"`

	// Recursive follows the child sitemaps of a sitemap index.
	Recursive bool `json:"recursive"`
}

package models

// TimingInfo reports how long a REST request took.
type TimingInfo struct {
	TotalMs int64 `json:"total_ms"`
}

// ScrapeResponse is the response for POST /api/v1/scrape.
type ScrapeResponse struct {
	Success bool          `json:"success"`
	Result  *ScrapeResult `json:"result,omitempty"`
	Timing  TimingInfo    `json:"timing"`
	Error   *ErrorDetail  `json:"error,omitempty"`
}

// SearchResponse is the response for POST /api/v1/search.
type SearchResponse struct {
	Success bool         `json:"success"`
	Items   []SearchItem `json:"items,omitempty"`
	Timing  TimingInfo   `json:"timing"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// MapResponse is the response for POST /api/v1/map.
type MapResponse struct {
	Success bool         `json:"success"`
	URLs    []string     `json:"urls,omitempty"`
	Kind    string       `json:"kind,omitempty"`
	Total   int          `json:"total"`
	Timing  TimingInfo   `json:"timing"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorResponse is the body of middleware rejections.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}

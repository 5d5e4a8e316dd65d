// Package tools exposes scrape, search and map as MCP tools.
package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/searchmcp/models"
)

// Scraper renders a page. *scraper.Scraper implements it.
type Scraper interface {
	Scrape(ctx context.Context, req *models.ScrapeRequest) (*models.ScrapeResult, error)
}

// Searcher runs a web search. *search.Client implements it.
type Searcher interface {
	Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResult, error)
}

// SitemapReader lists the URLs of a sitemap. *sitemap.Reader implements it.
type SitemapReader interface {
	Read(ctx context.Context, req *models.MapRequest) (*models.MapResult, error)
}

// Handlers adapts the services to MCP tool calls. Every handler reports
// failures as an isError result and never returns a Go error.
type Handlers struct {
	scraper          Scraper
	searcher         Searcher
	sitemaps         SitemapReader
	loc              *Localizer
	defaultTimeoutMs int
}

// NewHandlers wires the services behind the three tools.
func NewHandlers(sc Scraper, se Searcher, sm SitemapReader, loc *Localizer, defaultTimeoutMs int) *Handlers {
	if loc == nil {
		loc = NewLocalizer("en")
	}
	return &Handlers{
		scraper:          sc,
		searcher:         se,
		sitemaps:         sm,
		loc:              loc,
		defaultTimeoutMs: defaultTimeoutMs,
	}
}

// Register adds the scrape, search and map tools to s.
func (h *Handlers) Register(s *server.MCPServer) {
	s.AddTool(ScrapeTool(), h.Scrape)
	s.AddTool(SearchTool(), h.Search)
	s.AddTool(MapTool(), h.Map)
}

// ScrapeTool describes the scrape tool's input schema.
func ScrapeTool() mcp.Tool {
	return mcp.NewTool("scrape",
		mcp.WithDescription("Render a web page in a headless browser and return its content as markdown or html."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the page to scrape"),
		),
		mcp.WithString("selector",
			mcp.Description("CSS selector; only the outer HTML of the first matching element is returned"),
		),
		mcp.WithString("waitForSelector",
			mcp.Description("CSS selector to wait for (visible) before extracting content"),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Navigation and wait timeout in milliseconds, at most one hour (default: 60000)"),
			mcp.Min(1),
			mcp.Max(models.MaxScrapeTimeoutMs),
		),
		mcp.WithString("outputFormat",
			mcp.Description("Output format: 'markdown' (default) or 'html'"),
			mcp.Enum(models.FormatMarkdown, models.FormatHTML),
		),
		mcp.WithString("extractMode",
			mcp.Description("Without a selector: 'full' page markup (default), body 'text', or the main article via 'readability'"),
			mcp.Enum(models.ExtractFull, models.ExtractText, models.ExtractReadability),
		),
	)
}

// SearchTool describes the search tool's input schema.
func SearchTool() mcp.Tool {
	return mcp.NewTool("search",
		mcp.WithDescription("Search the web with the Google Custom Search API."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The search query"),
		),
		mcp.WithNumber("num",
			mcp.Description("Number of results to return, 1-10 (default: 10)"),
			mcp.Min(1),
			mcp.Max(10),
		),
		mcp.WithNumber("start",
			mcp.Description("1-based index of the first result, for paging (default: 1)"),
			mcp.Min(1),
		),
	)
}

// MapTool describes the map tool's input schema.
func MapTool() mcp.Tool {
	return mcp.NewTool("map",
		mcp.WithDescription("Download an XML sitemap and list the URLs it contains."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the sitemap or sitemap index"),
		),
		mcp.WithBoolean("recursive",
			mcp.Description("For a sitemap index, follow child sitemaps and list their page URLs (default: false)"),
		),
	)
}

// Scrape handles the scrape tool. Input is validated before the browser is
// touched.
func (h *Handlers) Scrape(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req models.ScrapeRequest
	if err := request.BindArguments(&req); err != nil {
		return ErrorResult(h.loc, msgScrapeError, invalidArguments(err)), nil
	}
	req.Defaults(h.defaultTimeoutMs)
	if err := models.ValidateInput(&req); err != nil {
		return ErrorResult(h.loc, msgScrapeError, detail(h.loc, err)), nil
	}

	slog.Info("scrape requested", "url", req.URL, "format", req.OutputFormat, "selector", req.Selector)
	result, err := h.scraper.Scrape(ctx, &req)
	if err != nil {
		slog.Error("scrape failed", "url", req.URL, "code", models.CodeOf(err), "error", err)
		return ErrorResult(h.loc, msgScrapeError, scrapeDetail(h.loc, err, &req)), nil
	}
	return mcp.NewToolResultText(ScrapeText(result, req.OutputFormat)), nil
}

// Search handles the search tool.
func (h *Handlers) Search(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req models.SearchRequest
	if err := request.BindArguments(&req); err != nil {
		return ErrorResult(h.loc, msgSearchError, invalidArguments(err)), nil
	}
	req.Defaults()
	if err := models.ValidateInput(&req); err != nil {
		return ErrorResult(h.loc, msgSearchError, detail(h.loc, err)), nil
	}

	slog.Info("search requested", "query", req.Query, "num", req.Num, "start", req.Start)
	result, err := h.searcher.Search(ctx, &req)
	if err != nil {
		slog.Error("search failed", "query", req.Query, "code", models.CodeOf(err), "error", err)
		return ErrorResult(h.loc, msgSearchError, detail(h.loc, err)), nil
	}
	return mcp.NewToolResultText(SearchText(h.loc, &req, result)), nil
}

// Map handles the map tool.
func (h *Handlers) Map(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req models.MapRequest
	if err := request.BindArguments(&req); err != nil {
		return ErrorResult(h.loc, msgSitemapError, invalidArguments(err)), nil
	}
	if err := models.ValidateInput(&req); err != nil {
		return ErrorResult(h.loc, msgSitemapError, detail(h.loc, err)), nil
	}

	slog.Info("sitemap requested", "url", req.URL, "recursive", req.Recursive)
	result, err := h.sitemaps.Read(ctx, &req)
	if err != nil {
		slog.Error("sitemap failed", "url", req.URL, "code", models.CodeOf(err), "error", err)
		return ErrorResult(h.loc, msgSitemapError, detail(h.loc, err)), nil
	}
	return mcp.NewToolResultText(MapText(h.loc, req.URL, result)), nil
}

func invalidArguments(err error) string {
	return "invalid arguments: " + err.Error()
}

package tools

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/use-agent/searchmcp/models"
)

// ScrapeText returns the field of result selected by format.
func ScrapeText(result *models.ScrapeResult, format string) string {
	if format == models.FormatHTML {
		if result.HTML != nil {
			return *result.HTML
		}
		return ""
	}
	if result.Markdown != nil {
		return *result.Markdown
	}
	return ""
}

// SearchText renders search hits as a numbered list. Numbering starts at
// req.Start so consecutive pages continue the sequence.
func SearchText(l *Localizer, req *models.SearchRequest, result *models.SearchResult) string {
	var b strings.Builder
	b.WriteString(l.T(msgSearchHeader, req.Query, strconv.Itoa(req.Start), strconv.Itoa(req.Start+len(result.Items)-1)))
	b.WriteString("\n\n")

	if len(result.Items) == 0 {
		b.WriteString(l.T(msgNoResults))
		b.WriteString("\n")
		return b.String()
	}

	for i, it := range result.Items {
		fmt.Fprintf(&b, "%d. %s\n", req.Start+i, orDefault(it.Title, l.T(msgNoTitle)))
		fmt.Fprintf(&b, "   %s: %s\n", l.T(msgLink), orDefault(it.Link, l.T(msgNoLink)))
		fmt.Fprintf(&b, "   %s: %s\n\n", l.T(msgSnippet), orDefault(it.Snippet, l.T(msgNoSnippet)))
	}
	return b.String()
}

// MapText renders the URLs of a sitemap, one per line.
func MapText(l *Localizer, sitemapURL string, result *models.MapResult) string {
	return l.T(msgMapHeader, sitemapURL, strconv.Itoa(len(result.URLs))) + "\n" + strings.Join(result.URLs, "\n")
}

// ErrorResult builds an isError tool result "<label>: <detail>".
func ErrorResult(l *Localizer, label, detail string) *mcp.CallToolResult {
	return mcp.NewToolResultError(l.T(label) + ": " + detail)
}

// scrapeDetail describes a scrape failure for the caller.
func scrapeDetail(l *Localizer, err error, req *models.ScrapeRequest) string {
	var se *models.ScrapeError
	if !errors.As(err, &se) {
		return err.Error()
	}
	switch se.Code {
	case models.ErrCodeTimeout:
		return l.T(msgTimedOut, strconv.Itoa(req.TimeoutMs()), se.Message)
	case models.ErrCodeNotFound:
		return l.T(msgElementNotFound, se.Message)
	case models.ErrCodeNavigation:
		return l.T(msgNavigation, se.Message)
	default:
		return commonDetail(l, se)
	}
}

// detail describes a search or sitemap failure for the caller.
func detail(l *Localizer, err error) string {
	var se *models.ScrapeError
	if !errors.As(err, &se) {
		return err.Error()
	}
	return commonDetail(l, se)
}

func commonDetail(l *Localizer, se *models.ScrapeError) string {
	switch se.Code {
	case models.ErrCodeOutputFormat:
		return l.T(msgFormatFailed)
	case models.ErrCodeNotConfigured:
		return l.T(msgNotConfigured, se.Message)
	default:
		return se.Message
	}
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

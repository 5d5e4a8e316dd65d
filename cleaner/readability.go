package cleaner

import (
	"log/slog"
	nurl "net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the minimum visible-text length (in characters) for
// readability output to be considered valid. Below this threshold we assume
// the algorithm failed to locate the main content.
const minContentLength = 50

// MainContent runs the Mozilla Readability algorithm on rawHTML and returns
// the cleaned main-article HTML.
//
// It never fails: when the URL cannot be parsed, readability errors, or the
// extracted text is too short, rawHTML is returned unchanged and ok is false.
func MainContent(rawHTML string, sourceURL string) (content string, ok bool) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("readability: invalid source URL, falling back to raw HTML",
			"url", sourceURL, "error", err,
		)
		return rawHTML, false
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Warn("readability: extraction failed, falling back to raw HTML",
			"url", sourceURL, "error", err,
		)
		return rawHTML, false
	}

	if n := len(VisibleText(article.Content)); n < minContentLength {
		slog.Warn("readability: extracted content too short, falling back to raw HTML",
			"url", sourceURL, "length", n,
		)
		return rawHTML, false
	}

	return article.Content, true
}

// VisibleText extracts the text of an HTML fragment by parsing it with
// goquery, dropping script and style content. Returns trimmed plain text.
func VisibleText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("script, style, noscript").Remove()
	return strings.TrimSpace(doc.Text())
}

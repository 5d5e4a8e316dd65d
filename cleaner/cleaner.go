package cleaner

import (
	"net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/use-agent/searchmcp/models"
)

// Cleaner converts extracted page markup into the requested output format.
// It holds one goroutine-safe converter shared by all scrapes.
type Cleaner struct {
	md *converter.Converter
}

// NewCleaner builds the markdown converter used for scrape results:
// script, style and head content is dropped, headings, lists, links and code
// blocks follow CommonMark, and tables keep their structure with minimal
// padding.
func NewCleaner() *Cleaner {
	return &Cleaner{
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(
					table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
				),
			),
		),
	}
}

// Convert returns content in format: "html" passes through unchanged,
// "markdown" is converted with relative links resolved against pageURL.
func (c *Cleaner) Convert(content, pageURL, format string) (string, error) {
	switch format {
	case models.FormatHTML:
		return content, nil
	case models.FormatMarkdown, "":
		md, err := c.markdown(content, pageURL)
		if err != nil {
			return "", models.NewScrapeError(
				models.ErrCodeExtraction,
				"markdown conversion failed",
				err,
			)
		}
		return md, nil
	default:
		return "", models.NewScrapeError(
			models.ErrCodeInvalidInput,
			"unsupported output format "+format,
			nil,
		)
	}
}

func (c *Cleaner) markdown(content, pageURL string) (string, error) {
	var opts []converter.ConvertOptionFunc
	if base, ok := linkBase(pageURL); ok {
		opts = append(opts, converter.WithDomain(base))
	}
	return c.md.ConvertString(content, opts...)
}

// linkBase reports whether pageURL can anchor relative links. Pages the
// browser never left (about:blank, data: URLs) keep their links as written.
func linkBase(pageURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || u.Host == "" {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return u.String(), true
}

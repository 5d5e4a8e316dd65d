package sitemap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/use-agent/searchmcp/models"
	"golang.org/x/net/html/charset"
)

type urlset struct {
	URLs []locEntry `xml:"url"`
}

type sitemapIndex struct {
	Sitemaps []locEntry `xml:"sitemap"`
}

type locEntry struct {
	Loc string `xml:"loc"`
}

// Document is a parsed sitemap file.
type Document struct {
	// Kind is models.SitemapURLSet, models.SitemapIndex or models.SitemapUnknown.
	Kind string

	// Locs holds page URLs for a urlset and child sitemap URLs for an index.
	Locs []string
}

// Parse decodes a sitemap or sitemap index. Empty <loc> values are dropped.
// A well-formed document with any other root element yields Kind unknown.
// Documents declaring a non-UTF-8 encoding are transcoded.
func Parse(data []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	dec.CharsetReader = charset.NewReaderLabel

	root, err := rootElement(dec)
	if err != nil {
		return nil, err
	}

	doc := &Document{Kind: models.SitemapUnknown}
	switch root.Name.Local {
	case "urlset":
		var us urlset
		if err := dec.DecodeElement(&us, &root); err != nil {
			return nil, invalidXML(err)
		}
		doc.Kind = models.SitemapURLSet
		doc.Locs = locs(us.URLs)
	case "sitemapindex":
		var idx sitemapIndex
		if err := dec.DecodeElement(&idx, &root); err != nil {
			return nil, invalidXML(err)
		}
		doc.Kind = models.SitemapIndex
		doc.Locs = locs(idx.Sitemaps)
	default:
		if err := dec.Skip(); err != nil {
			return nil, invalidXML(err)
		}
	}
	return doc, nil
}

func rootElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return xml.StartElement{}, invalidXML(errors.New("document has no root element"))
		}
		if err != nil {
			return xml.StartElement{}, invalidXML(err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

func locs(entries []locEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if loc := strings.TrimSpace(e.Loc); loc != "" {
			out = append(out, loc)
		}
	}
	return out
}

func invalidXML(err error) error {
	return models.NewScrapeError(models.ErrCodeParse, fmt.Sprintf("invalid sitemap XML: %v", err), err)
}

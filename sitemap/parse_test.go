package sitemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/searchmcp/models"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		xml      string
		wantKind string
		wantLocs []string
	}{
		{
			name: "urlset",
			xml: `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/a</loc><lastmod>2024-01-01</lastmod></url>
  <url><loc> https://example.com/b </loc></url>
  <url><loc></loc></url>
  <url><loc>   </loc></url>
</urlset>`,
			wantKind: models.SitemapURLSet,
			wantLocs: []string{"https://example.com/a", "https://example.com/b"},
		},
		{
			name: "single url",
			xml: `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/only</loc></url>
</urlset>`,
			wantKind: models.SitemapURLSet,
			wantLocs: []string{"https://example.com/only"},
		},
		{
			name: "sitemap index",
			xml: `<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>https://example.com/s1.xml</loc></sitemap>
  <sitemap><loc>https://example.com/s2.xml</loc></sitemap>
</sitemapindex>`,
			wantKind: models.SitemapIndex,
			wantLocs: []string{"https://example.com/s1.xml", "https://example.com/s2.xml"},
		},
		{
			name:     "empty urlset",
			xml:      `<urlset></urlset>`,
			wantKind: models.SitemapURLSet,
			wantLocs: []string{},
		},
		{
			name:     "unknown root",
			xml:      `<rss><channel><item><link>https://example.com/</link></item></channel></rss>`,
			wantKind: models.SitemapUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.xml))
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, doc.Kind)
			assert.Equal(t, tt.wantLocs, doc.Locs)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, input := range []string{
		`<urlset><url><loc>https://example.com/a</loc></url>`,
		`<urlset><url></urlset>`,
		`not xml at all`,
		``,
	} {
		_, err := Parse([]byte(input))
		require.Error(t, err, input)
		assert.Equal(t, models.ErrCodeParse, models.CodeOf(err))
		assert.Contains(t, err.Error(), "invalid sitemap XML")
	}
}

func TestParse_Latin1(t *testing.T) {
	input := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<urlset><url><loc>https://example.com/caf\xe9</loc></url></urlset>"

	doc, err := Parse([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/café"}, doc.Locs)
}

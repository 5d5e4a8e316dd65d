package tools

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. English text doubles as the key and the fallback. Numbers
// are passed preformatted so the printer does not group digits.
const (
	msgScrapeError     = "scrape error"
	msgSearchError     = "search error"
	msgSitemapError    = "sitemap error"
	msgTimedOut        = "operation timed out (%sms): %s"
	msgElementNotFound = "element not found: %s"
	msgNavigation      = "navigation error: %s"
	msgFormatFailed    = "internal error: failed to format the result"
	msgNotConfigured   = "server is not configured: %s"
	msgSearchHeader    = "Results for %q (items %s to %s):"
	msgNoResults       = "No results found."
	msgNoTitle         = "No title"
	msgNoLink          = "No link"
	msgNoSnippet       = "No snippet"
	msgLink            = "Link"
	msgSnippet         = "Snippet"
	msgMapHeader       = "URLs parsed from %s (%s):"
)

var traditionalChinese = language.MustParse("zh-TW")

func init() {
	for key, msg := range map[string]string{
		msgScrapeError:     "抓取錯誤",
		msgSearchError:     "搜尋錯誤",
		msgSitemapError:    "Sitemap 解析錯誤",
		msgTimedOut:        "操作超時 (%sms): %s",
		msgElementNotFound: "找不到元素: %s",
		msgNavigation:      "導航錯誤: %s",
		msgFormatFailed:    "伺服器錯誤：處理結果格式時發生問題",
		msgNotConfigured:   "伺服器錯誤：%s",
		msgSearchHeader:    "搜尋 %q 的結果 (第 %s 到 %s 項):",
		msgNoResults:       "找不到相關結果。",
		msgNoTitle:         "無標題",
		msgNoLink:          "無連結",
		msgNoSnippet:       "無摘要",
		msgLink:            "連結",
		msgSnippet:         "摘要",
		msgMapHeader:       "從 %s 解析出的 URL 列表 (%s 個):",
	} {
		_ = message.SetString(language.English, key, key)
		_ = message.SetString(traditionalChinese, key, msg)
	}
}

// Localizer renders user-facing tool text in one language.
type Localizer struct {
	p *message.Printer
}

// NewLocalizer returns a Localizer for a BCP 47 tag such as "en" or
// "zh-TW". Unknown or malformed tags fall back to English.
func NewLocalizer(locale string) *Localizer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Localizer{p: message.NewPrinter(tag)}
}

// T returns the translation of key formatted with args.
func (l *Localizer) T(key string, args ...any) string {
	return l.p.Sprintf(key, args...)
}

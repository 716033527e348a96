package feedparse

import (
	"io"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// maxExcerptLen bounds cleaned text. The cap is a hard truncation.
const maxExcerptLen = 500

// CleanText strips all tag markup from HTML-bearing feed text, decodes
// entities, collapses whitespace runs to single spaces, trims, and caps the
// result. Input that fails to tokenize degrades to an empty string.
func CleanText(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	tokenizer := html.NewTokenizer(strings.NewReader(input))
	var buf strings.Builder

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			if tokenizer.Err() == io.EOF {
				break
			}
			return ""
		}
		if tt == html.TextToken {
			buf.WriteString(tokenizer.Token().Data)
			buf.WriteByte(' ')
		}
	}

	// Fields splits on any unicode whitespace, including the non-breaking
	// spaces the tokenizer decodes from &nbsp;.
	cleaned := strings.Join(strings.Fields(buf.String()), " ")

	runes := []rune(cleaned)
	if len(runes) > maxExcerptLen {
		return string(runes[:maxExcerptLen])
	}
	return cleaned
}

// dateLayouts covers the formats feeds use in the wild: RFC 1123/822
// variants for RSS pubDate, RFC 3339 for Atom and dc:date, plus a few
// sloppy date-only forms.
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.RFC822Z,
	time.RFC822,
	"2 Jan 2006 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate normalizes a feed date string to an absolute instant. Absent or
// unparsable dates yield the current time: such articles sort as "now"
// instead of being rejected.
func ParseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value != "" {
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, value); err == nil {
				return parsed.UTC()
			}
		}
	}
	return time.Now().UTC()
}

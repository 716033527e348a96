package feedparse_test

import (
	"strings"
	"testing"
	"time"

	"feedbox/backend/internal/feedparse"

	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
<title>Tech Weekly</title>
<link>https://example.com</link>
<description>All the tech</description>
<item>
  <title>First Post</title>
  <link>https://example.com/1</link>
  <description>Plain description</description>
  <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
</item>
<item>
  <title><![CDATA[Second <b>Post</b>]]></title>
  <link>https://example.com/2</link>
  <description><![CDATA[<p>Rich &amp; formatted</p>]]></description>
  <content:encoded><![CDATA[<article>Full body</article>]]></content:encoded>
  <dc:date>2006-01-03T10:00:00Z</dc:date>
</item>
<item>
  <TITLE>Shouty Item</TITLE>
  <LINK>https://example.com/3</LINK>
  <Description>Case does not matter</Description>
  <PubDate>Tue, 03 Jan 2006 15:04:05 GMT</PubDate>
</item>
</channel>
</rss>`

const sampleAtom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Planet</title>
  <link href="https://example.org/"/>
  <updated>2006-01-02T15:04:05Z</updated>
  <entry>
    <title>Entry One</title>
    <link rel="self" href="https://example.org/self/1"/>
    <link rel="alternate" href="https://example.org/posts/1"/>
    <summary>Short summary</summary>
    <content type="html">&lt;p&gt;Body&lt;/p&gt;</content>
    <published>2006-01-02T15:04:05Z</published>
  </entry>
  <entry>
    <title>Entry Two</title>
    <link href="https://example.org/posts/2"/>
    <updated>2006-01-04T09:30:00Z</updated>
  </entry>
</feed>`

func TestParse_RSS(t *testing.T) {
	result := feedparse.Parse([]byte(sampleRSS))

	require.Equal(t, "Tech Weekly", result.Title)
	require.Len(t, result.Items, 3)

	first := result.Items[0]
	require.Equal(t, "First Post", first.Title)
	require.Equal(t, "https://example.com/1", first.Link)
	require.Equal(t, "Plain description", first.Description)
	require.Equal(t, "Mon, 02 Jan 2006 15:04:05 GMT", first.PubDate)

	second := result.Items[1]
	require.Equal(t, "Second <b>Post</b>", second.Title)
	// CDATA bodies pass through verbatim; entity decoding happens in CleanText.
	require.Equal(t, "<p>Rich &amp; formatted</p>", second.Description)
	require.Equal(t, "<article>Full body</article>", second.Content)
	require.Equal(t, "2006-01-03T10:00:00Z", second.PubDate)

	third := result.Items[2]
	require.Equal(t, "Shouty Item", third.Title)
	require.Equal(t, "https://example.com/3", third.Link)
}

func TestParse_ChannelTitleNotContaminatedByItems(t *testing.T) {
	raw := `<rss><channel><item><title>Item Title</title></item><title>Feed Title</title></channel></rss>`
	result := feedparse.Parse([]byte(raw))
	require.Equal(t, "Feed Title", result.Title)
	require.Len(t, result.Items, 1)
	require.Equal(t, "Item Title", result.Items[0].Title)
}

func TestParse_Atom(t *testing.T) {
	result := feedparse.Parse([]byte(sampleAtom))

	require.Equal(t, "Atom Planet", result.Title)
	require.Len(t, result.Items, 2)

	first := result.Items[0]
	require.Equal(t, "Entry One", first.Title)
	require.Equal(t, "https://example.org/posts/1", first.Link, "rel=alternate must win over the self link")
	require.Equal(t, "Short summary", first.Description)
	require.Equal(t, "<p>Body</p>", first.Content)
	require.Equal(t, "2006-01-02T15:04:05Z", first.PubDate)

	second := result.Items[1]
	require.Equal(t, "https://example.org/posts/2", second.Link)
	require.Equal(t, "2006-01-04T09:30:00Z", second.PubDate, "updated is the published fallback")
}

func TestParse_RSSItemWithAtomSelfLink(t *testing.T) {
	raw := `<rss><channel><title>F</title><item>
		<atom:link href="https://example.com/feed.xml" rel="self"/>
		<link>https://example.com/real</link>
		<title>Mixed</title>
	</item></channel></rss>`
	result := feedparse.Parse([]byte(raw))
	require.Len(t, result.Items, 1)
	require.Equal(t, "https://example.com/real", result.Items[0].Link)
}

func TestParse_MalformedDegradesInsteadOfFailing(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		items int
	}{
		{name: "truncated document", raw: `<rss><channel><title>Cut</title><item><title>One</title><link>https://x/1</link>`, items: 1},
		{name: "garbage bytes", raw: "\x00\x01 not xml at all", items: 0},
		{name: "empty input", raw: "", items: 0},
		{name: "unclosed tags", raw: `<rss><channel><title>Messy<item><link>https://x/2</channel>`, items: 1},
		{name: "zero items", raw: `<rss><channel><title>Empty Feed</title></channel></rss>`, items: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := feedparse.Parse([]byte(tc.raw))
			require.Len(t, result.Items, tc.items)
		})
	}
}

func TestParse_AttributesOnTagsTolerated(t *testing.T) {
	raw := `<rss version="2.0"><channel><title type="text">Attr Feed</title>
		<item><title class="headline">Attr Item</title><link>https://x/1</link></item></channel></rss>`
	result := feedparse.Parse([]byte(raw))
	require.Equal(t, "Attr Feed", result.Title)
	require.Len(t, result.Items, 1)
	require.Equal(t, "Attr Item", result.Items[0].Title)
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "strips tags", input: "<p>Hello <strong>World</strong></p>", want: "Hello World"},
		{name: "decodes entities", input: "a &lt;b&gt; &amp; &quot;c&quot; &#39;d&#39;", want: `a <b> & "c" 'd'`},
		{name: "nbsp collapses", input: "one&nbsp;&nbsp;two", want: "one two"},
		{name: "whitespace runs", input: "  a \n\t b   c  ", want: "a b c"},
		{name: "empty", input: "", want: ""},
		{name: "plain text unchanged", input: "just words", want: "just words"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, feedparse.CleanText(tc.input))
		})
	}
}

func TestCleanText_CapsLength(t *testing.T) {
	long := strings.Repeat("x", 2000)
	cleaned := feedparse.CleanText(long)
	require.Len(t, cleaned, 500)
	require.Equal(t, strings.Repeat("x", 500), cleaned)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{name: "rfc1123", input: "Mon, 02 Jan 2006 15:04:05 GMT", want: time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)},
		{name: "rfc1123z", input: "Mon, 02 Jan 2006 15:04:05 +0200", want: time.Date(2006, 1, 2, 13, 4, 5, 0, time.UTC)},
		{name: "rfc3339", input: "2006-01-02T15:04:05Z", want: time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)},
		{name: "single digit day", input: "Mon, 2 Jan 2006 15:04:05 -0700", want: time.Date(2006, 1, 2, 22, 4, 5, 0, time.UTC)},
		{name: "date only", input: "2006-01-02", want: time.Date(2006, 1, 2, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, tc.want.Equal(feedparse.ParseDate(tc.input)))
		})
	}
}

func TestParseDate_FallsBackToNow(t *testing.T) {
	for _, input := range []string{"", "not a date", "tomorrow-ish"} {
		before := time.Now().Add(-time.Second)
		got := feedparse.ParseDate(input)
		after := time.Now().Add(time.Second)
		require.True(t, got.After(before) && got.Before(after), "input %q should fall back to now, got %v", input, got)
	}
}

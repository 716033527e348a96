package feedparse

import "strings"

const atomNamespace = "http://www.w3.org/2005/Atom"

// Item is one normalized feed entry. PubDate carries the raw date string
// from the feed; callers normalize it with ParseDate.
type Item struct {
	Title       string
	Description string
	Content     string
	Link        string
	PubDate     string
}

// Result is the normalized form of one parsed feed document.
type Result struct {
	Title string
	Items []Item
}

// Parse converts raw feed XML into a normalized result. It never fails:
// malformed input degrades to blank fields or zero items rather than an
// error, and a zero-item result is a legitimate outcome for the caller.
func Parse(raw []byte) Result {
	root := buildTree(raw)

	if feed := atomRoot(root); feed != nil {
		return parseAtom(feed)
	}
	return parseRSS(root)
}

// atomRoot returns the top-level <feed> element when the document is Atom.
// The namespace check is lenient: feeds that omit the Atom namespace but use
// the <feed>/<entry> structure are still accepted.
func atomRoot(root *node) *node {
	for _, c := range root.children {
		if c.name != "feed" {
			continue
		}
		if c.space == "" || c.space == atomNamespace {
			return c
		}
	}
	return nil
}

func parseRSS(root *node) Result {
	result := Result{Items: []Item{}}

	// Feed-level title must come from <channel>, not from the first <item>.
	if channel := firstDescendant(root, "channel"); channel != nil {
		result.Title = channel.childText("title")
	}

	for _, item := range root.descendants("item") {
		content := item.childText("encoded") // content:encoded
		if content == "" {
			content = item.childText("content")
		}
		pubDate := item.childText("pubdate")
		if pubDate == "" {
			pubDate = item.childText("date") // dc:date
		}
		result.Items = append(result.Items, Item{
			Title:       item.childText("title"),
			Description: item.childText("description"),
			Content:     content,
			Link:        rssLink(item),
			PubDate:     pubDate,
		})
	}

	return result
}

func parseAtom(feed *node) Result {
	result := Result{Title: feed.childText("title"), Items: []Item{}}

	for _, entry := range feed.childrenNamed("entry") {
		pubDate := entry.childText("published")
		if pubDate == "" {
			pubDate = entry.childText("updated")
		}
		result.Items = append(result.Items, Item{
			Title:       entry.childText("title"),
			Description: entry.childText("summary"),
			Content:     entry.childText("content"),
			Link:        atomLink(entry),
			PubDate:     pubDate,
		})
	}

	return result
}

// rssLink returns the item link, skipping embedded atom:link elements whose
// body is empty in favor of the RSS <link> text.
func rssLink(item *node) string {
	var href string
	for _, link := range item.childrenNamed("link") {
		if text := strings.TrimSpace(link.text.String()); text != "" {
			return text
		}
		if href == "" {
			href = strings.TrimSpace(link.attrs["href"])
		}
	}
	return href
}

// atomLink prefers the rel="alternate" link's href, then the first link
// carrying an href at all.
func atomLink(entry *node) string {
	var first string
	for _, link := range entry.childrenNamed("link") {
		href := strings.TrimSpace(link.attrs["href"])
		if href == "" {
			continue
		}
		if strings.EqualFold(link.attrs["rel"], "alternate") {
			return href
		}
		if first == "" {
			first = href
		}
	}
	return first
}

func firstDescendant(root *node, name string) *node {
	nodes := root.descendants(name)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

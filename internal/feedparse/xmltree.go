package feedparse

import (
	"bytes"
	"encoding/xml"
	"strings"

	"golang.org/x/net/html/charset"
)

// node is a minimal DOM built from the token stream. Tag and attribute names
// are lowercased so lookups are case-insensitive, and CDATA sections arrive
// as ordinary character data from the decoder.
type node struct {
	name     string
	space    string
	attrs    map[string]string
	children []*node
	text     strings.Builder
}

func (n *node) child(name string) *node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

func (n *node) childText(name string) string {
	if c := n.child(name); c != nil {
		return strings.TrimSpace(c.text.String())
	}
	return ""
}

func (n *node) childrenNamed(name string) []*node {
	var out []*node
	for _, c := range n.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// descendants collects every element with the given name anywhere below n,
// in document order.
func (n *node) descendants(name string) []*node {
	var out []*node
	for _, c := range n.children {
		if c.name == name {
			out = append(out, c)
		}
		out = append(out, c.descendants(name)...)
	}
	return out
}

// buildTree parses raw XML into an element tree. It is deliberately lenient:
// a token error mid-stream ends the parse and whatever was built so far is
// returned, so a truncated or sloppily nested document still yields its
// recognizable elements.
func buildTree(raw []byte) *node {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	decoder.Strict = false
	decoder.AutoClose = xml.HTMLAutoClose
	decoder.Entity = xml.HTMLEntity
	decoder.CharsetReader = charset.NewReaderLabel

	root := &node{name: ""}
	stack := []*node{root}

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			element := &node{
				name:  strings.ToLower(t.Name.Local),
				space: t.Name.Space,
				attrs: make(map[string]string, len(t.Attr)),
			}
			for _, attr := range t.Attr {
				element.attrs[strings.ToLower(attr.Name.Local)] = attr.Value
			}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, element)
			stack = append(stack, element)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			stack[len(stack)-1].text.Write(t)
		}
	}

	return root
}

package docs

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Node is the query capability the extractor needs over fetched markup.
// Extraction rules only ever select, read text and read attributes, so they
// run the same against a parsed page or a synthetic fixture.
type Node interface {
	// Select returns the descendants matching a CSS selector, in document order.
	Select(selector string) []Node
	// Text returns the combined text of the node and its descendants.
	Text() string
	// Attr returns the named attribute.
	Attr(name string) (string, bool)
}

// Parse builds a Node tree over raw HTML.
func Parse(raw []byte) (Node, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return selectionNode{sel: doc.Selection}, nil
}

type selectionNode struct {
	sel *goquery.Selection
}

func (n selectionNode) Select(selector string) []Node {
	found := n.sel.Find(selector)
	out := make([]Node, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		out = append(out, selectionNode{sel: s})
	})
	return out
}

func (n selectionNode) Text() string {
	return n.sel.Text()
}

func (n selectionNode) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

// first returns the first match of selector below n.
func first(n Node, selector string) (Node, bool) {
	found := n.Select(selector)
	if len(found) == 0 {
		return nil, false
	}
	return found[0], true
}

// firstText returns the trimmed text of the first match of selector below n.
func firstText(n Node, selector string) (string, bool) {
	node, ok := first(n, selector)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(node.Text()), true
}

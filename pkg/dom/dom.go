// Package dom wraps the parsed representation of one fetched page.
// It owns parsing, pre-detection cleanup, and fragment serialization so the
// detection layers can work against a stable, navigable tree.
//
// Parsing is error-tolerant: malformed markup degrades to a partial tree,
// mirroring how a real browser DOM behaves. A parse error is only possible
// when the underlying reader fails.
package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is the parsed tree for a single page. It is exclusively owned by
// one scan and must not be shared across scans.
type Document struct {
	doc *goquery.Document
}

// Parse builds a Document from rendered HTML. Malformed input produces a
// best-effort tree, never an error; the returned error covers only reader
// failures.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return &Document{doc: doc}, nil
}

// ParseString builds a Document from an in-memory HTML string.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// Clean removes script, style, and noscript subtrees plus comment nodes.
// Detection snippets should show markup a user would recognize, not
// megabytes of bundled JavaScript.
func (d *Document) Clean() {
	d.doc.Find("script, style, noscript").Remove()
	removeComments(nodesRoot(d.doc))
}

// Title returns the trimmed <title> text, or "" when the page has none.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// Find runs a CSS selector query against the whole tree.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Root returns the root node of the tree, or nil for an empty document.
func (d *Document) Root() *html.Node {
	return nodesRoot(d.doc)
}

// Empty reports whether the document contains no element nodes at all.
// html.Parse synthesizes a page skeleton for any input, so parsed pages
// are never Empty; the check guards documents whose selection carries no
// nodes.
func (d *Document) Empty() bool {
	root := d.Root()
	if root == nil {
		return true
	}
	return firstElement(root) == nil
}

func nodesRoot(doc *goquery.Document) *html.Node {
	nodes := doc.Selection.Nodes
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func firstElement(n *html.Node) *html.Node {
	if n.Type == html.ElementNode {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if el := firstElement(c); el != nil {
			return el
		}
	}
	return nil
}

func removeComments(n *html.Node) {
	if n == nil {
		return
	}
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
			continue
		}
		removeComments(c)
	}
}

package dom

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Path is the structural position of an element: the child-element index at
// every step from the root. Two nodes share a Path only if they are the same
// element, so it serves as a stable identity that survives tree copies.
type Path []int

// String renders the path as dotted indexes, e.g. "0.1.3".
func (p Path) String() string {
	if len(p) == 0 {
		return "root"
	}
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ".")
}

// Equal reports whether two paths address the same structural position.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// PathOf computes the structural path of n by walking its parent chain and
// counting preceding element siblings at each level. Text and comment nodes
// do not shift indexes, so cosmetic whitespace edits keep paths stable.
func PathOf(n *html.Node) Path {
	var rev []int
	for cur := n; cur != nil && cur.Parent != nil; cur = cur.Parent {
		idx := 0
		for sib := cur.Parent.FirstChild; sib != nil && sib != cur; sib = sib.NextSibling {
			if sib.Type == html.ElementNode {
				idx++
			}
		}
		rev = append(rev, idx)
	}
	path := make(Path, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path
}

// OuterHTML serializes the subtree rooted at n, exactly as it stands at call
// time. Later tree mutations never affect an already captured string.
func OuterHTML(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return ""
	}
	return strings.TrimSpace(b.String())
}

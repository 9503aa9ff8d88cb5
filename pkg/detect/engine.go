package detect

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/authscope/authscope/pkg/defaults"
	"github.com/authscope/authscope/pkg/dom"
	"github.com/authscope/authscope/pkg/strutil"
)

// verbPhrase matches "sign in with", "log in using", "continue via" style
// control text. The captured tail is checked against the provider allow-list
// so that a bare "continue with email" never counts as OAuth.
var verbPhrase = regexp.MustCompile(`(?:sign\s*in|log\s*in|sign\s*up|continue)\s+(?:with|using|via)\s+(.+)`)

// Engine runs the five detection layers over a parsed document.
// A zero-configured Engine from New uses the default provider allow-list and
// emits bare password inputs when no ancestor qualifies.
type Engine struct {
	fallback  FallbackPolicy
	providers []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithFallback sets the policy for password inputs with no qualifying ancestor.
func WithFallback(p FallbackPolicy) Option {
	return func(e *Engine) { e.fallback = p }
}

// WithProviders replaces the OAuth provider allow-list. Entries are
// lowercased; an empty list disables the OAuth button layer.
func WithProviders(providers []string) Option {
	return func(e *Engine) { e.providers = normalizeProviders(providers) }
}

// New builds an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		fallback:  FallbackElement,
		providers: normalizeProviders(DefaultProviders),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Detect runs all layers against the document and returns the deduplicated
// findings in layer order. It never mutates the document and returns the same
// result for repeated calls on the same tree.
func (e *Engine) Detect(doc *dom.Document) []Detection {
	if doc == nil || doc.Empty() {
		return nil
	}
	return aggregate([][]Detection{
		e.passwordForms(doc),
		e.keywordForms(doc),
		e.authContainers(doc),
		e.oauthButtons(doc),
		e.authLinks(doc),
	})
}

// passwordForms anchors on input[type=password] elements, the strongest
// signal a page accepts credentials. For each one it emits the enclosing
// form, else the nearest keyword-named div/section ancestor, else the input
// itself subject to the fallback policy.
func (e *Engine) passwordForms(doc *dom.Document) []Detection {
	var out []Detection
	doc.Find("input").Each(func(_ int, input *goquery.Selection) {
		if !isPasswordInput(input) {
			return
		}
		if form := input.Closest("form"); form.Length() > 0 {
			out = append(out, newDetection(CategoryPasswordForm, form.Get(0),
				"", "Form wrapping a password input"))
			return
		}
		if container := closestKeywordContainer(input); container != nil {
			out = append(out, newDetection(CategoryPasswordForm, container,
				"", "Password input inside a container with auth-related attributes"))
			return
		}
		if e.fallback == FallbackSuppress {
			return
		}
		out = append(out, newDetection(CategoryPasswordForm, input.Get(0),
			"", "Standalone password input (no parent form detected)"))
	})
	return out
}

// keywordForms flags forms whose own attributes mention an auth keyword, and
// forms whose inputs carry auth-typed or auth-named fields.
func (e *Engine) keywordForms(doc *dom.Document) []Detection {
	var out []Detection
	doc.Find("form").Each(func(_ int, form *goquery.Selection) {
		if containsKeyword(attrBlob(form, "id", "class", "action")) {
			out = append(out, newDetection(CategoryAuthForm, form.Get(0),
				"", "Form with auth-related id, class, or action"))
			return
		}
		if hasAuthInputs(form) {
			out = append(out, newDetection(CategoryAuthForm, form.Get(0),
				"", "Form containing auth-related input fields"))
		}
	})
	return out
}

// authContainers flags div/section elements named like auth UI, but only
// when they actually house form controls. A nav bar with class "login-area"
// and no inputs stays out.
func (e *Engine) authContainers(doc *dom.Document) []Detection {
	var out []Detection
	doc.Find("div, section").Each(func(_ int, sel *goquery.Selection) {
		if !containsKeyword(attrBlob(sel, "id", "class")) {
			return
		}
		if sel.Find("input").Length() == 0 {
			return
		}
		node := sel.Get(0)
		out = append(out, newDetection(CategoryAuthContainer, node, "",
			fmt.Sprintf("<%s> with auth-related attributes housing input fields", node.Data)))
	})
	return out
}

// oauthButtons flags clickable controls whose text names a known identity
// provider, either through a sign-in verb phrase or an explicit oauth/sso
// mention.
func (e *Engine) oauthButtons(doc *dom.Document) []Detection {
	var out []Detection
	doc.Find(`button, a, [role="button"]`).Each(func(_ int, sel *goquery.Selection) {
		label := collapseSpace(sel.Text())
		text := strings.ToLower(label)
		for _, attr := range []string{"aria-label", "title"} {
			v, ok := sel.Attr(attr)
			if !ok || v == "" {
				continue
			}
			text += " " + strings.ToLower(collapseSpace(v))
			if label == "" {
				label = collapseSpace(v)
			}
		}
		provider, ok := e.matchProvider(text)
		if !ok {
			return
		}
		out = append(out, newDetection(CategoryOAuthButton, sel.Get(0), label,
			fmt.Sprintf("Social / SSO login control (%s)", provider)))
	})
	return out
}

// authLinks flags anchors whose href path points at an auth endpoint.
func (e *Engine) authLinks(doc *dom.Document) []Detection {
	var out []Detection
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !matchesAuthPath(href) {
			return
		}
		out = append(out, newDetection(CategoryAuthLink, sel.Get(0),
			collapseSpace(sel.Text()), "Link to an authentication endpoint"))
	})
	return out
}

// matchProvider reports whether control text reads as an OAuth/SSO control
// and which provider it names.
func (e *Engine) matchProvider(text string) (string, bool) {
	if text == "" || len(e.providers) == 0 {
		return "", false
	}
	if m := verbPhrase.FindStringSubmatch(text); m != nil {
		for _, p := range e.providers {
			if strings.Contains(m[1], p) {
				return p, true
			}
		}
	}
	if strings.Contains(text, "oauth") || strings.Contains(text, "sso") {
		for _, p := range e.providers {
			if strings.Contains(text, p) {
				return p, true
			}
		}
	}
	return "", false
}

// matchesAuthPath normalizes an href (lowercased, query string and fragment
// ignored) and checks the path component against the auth endpoint patterns.
func matchesAuthPath(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	if href == "" {
		return false
	}
	path := href
	if u, err := url.Parse(href); err == nil {
		path = u.Path
	} else if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	for _, pattern := range linkPathPatterns {
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

// isPasswordInput reports whether the selection's first element is an
// input[type=password], type compared case-insensitively.
func isPasswordInput(s *goquery.Selection) bool {
	t, _ := s.Attr("type")
	return strings.EqualFold(strings.TrimSpace(t), "password")
}

// hasAuthInputs reports whether any input in the form is password- or
// email-typed, carries a known auth name, or has a keyword placeholder.
func hasAuthInputs(form *goquery.Selection) bool {
	matched := false
	form.Find("input").EachWithBreak(func(_ int, input *goquery.Selection) bool {
		t, _ := input.Attr("type")
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "password", "email":
			matched = true
			return false
		}
		name, _ := input.Attr("name")
		if matchesAuthInputName(strings.ToLower(name)) {
			matched = true
			return false
		}
		if containsKeyword(attrBlob(input, "placeholder")) {
			matched = true
			return false
		}
		return true
	})
	return matched
}

// closestKeywordContainer walks ancestors nearest-first for a div or section
// whose id or class mentions an auth keyword.
func closestKeywordContainer(s *goquery.Selection) *html.Node {
	var found *html.Node
	s.Parents().EachWithBreak(func(_ int, parent *goquery.Selection) bool {
		node := parent.Get(0)
		if node.Data != "div" && node.Data != "section" {
			return true
		}
		if containsKeyword(attrBlob(parent, "id", "class")) {
			found = node
			return false
		}
		return true
	})
	return found
}

// attrBlob lowercases and space-joins the named attributes of the selection's
// first element.
func attrBlob(s *goquery.Selection, names ...string) string {
	var b strings.Builder
	for _, name := range names {
		if v, ok := s.Attr(name); ok && v != "" {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(v)
		}
	}
	return strings.ToLower(b.String())
}

// collapseSpace trims and collapses whitespace runs to single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// newDetection captures the matched node as a Detection: serialized snippet,
// clipped, fingerprinted, with its structural path recorded for dedup.
// Labels are visible page text and can be arbitrarily long on styled
// pseudo-buttons, so they are clipped too.
func newDetection(c Category, n *html.Node, label, context string) Detection {
	snippet := clipSnippet(dom.OuterHTML(n))
	return Detection{
		Category:    c,
		HTML:        snippet,
		Label:       strutil.Truncate(label, defaults.LabelMax),
		Context:     context,
		Fingerprint: fingerprint(snippet),
		path:        dom.PathOf(n),
	}
}

// aggregate flattens per-layer results in layer order, dropping later
// findings that share both category and node with an earlier one. The same
// node may appear under two categories; that is two findings, not a
// duplicate.
func aggregate(layers [][]Detection) []Detection {
	var out []Detection
	seen := make(map[string]struct{})
	for _, layer := range layers {
		for _, d := range layer {
			key := d.Category.String() + "@" + d.path.String()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, d)
		}
	}
	return out
}

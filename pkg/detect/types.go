// Package detect implements the authentication component detection engine.
// It inspects a parsed page and classifies DOM fragments that look like parts
// of a login surface: password-anchored forms, keyword-matched forms and
// containers, OAuth/SSO buttons, and links to auth endpoints.
//
// Detection runs five independent layers over the whole tree, then
// deduplicates by (category, structural node identity) while preserving layer
// order. The engine is a pure function of the document: no I/O, no tree
// mutation, safe to run concurrently on independent documents.
package detect

import (
	"fmt"

	"github.com/authscope/authscope/pkg/dom"
)

// Category classifies a detected authentication component.
type Category int

const (
	// CategoryPasswordForm is a component anchored by an input[type=password].
	CategoryPasswordForm Category = iota
	// CategoryAuthForm is a form whose attributes or inputs signal authentication.
	CategoryAuthForm
	// CategoryAuthContainer is a div/section with auth naming that houses inputs.
	CategoryAuthContainer
	// CategoryOAuthButton is a social or single-sign-on login control.
	CategoryOAuthButton
	// CategoryAuthLink is a link pointing at an auth endpoint path.
	CategoryAuthLink
)

// categoryNames maps categories to their wire identifiers, in layer order.
var categoryNames = [...]string{
	CategoryPasswordForm:  "password_field_form",
	CategoryAuthForm:      "auth_form",
	CategoryAuthContainer: "auth_container",
	CategoryOAuthButton:   "oauth_button",
	CategoryAuthLink:      "auth_link",
}

// categoryDisplay maps categories to the labels shown in summaries and UIs.
var categoryDisplay = [...]string{
	CategoryPasswordForm:  "Login Form (contains password field)",
	CategoryAuthForm:      "Authentication Form",
	CategoryAuthContainer: "Auth Section / Container",
	CategoryOAuthButton:   "OAuth / SSO Button",
	CategoryAuthLink:      "Auth Link",
}

// String returns the wire identifier for the category.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// Display returns the human-readable label for the category.
func (c Category) Display() string {
	if c < 0 || int(c) >= len(categoryDisplay) {
		return "Unknown"
	}
	return categoryDisplay[c]
}

// MarshalText implements encoding.TextMarshaler so categories serialize as
// their wire identifiers.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory converts a wire identifier back into a Category.
func ParseCategory(s string) (Category, error) {
	for i, name := range categoryNames {
		if name == s {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("detect: unknown category %q", s)
}

// Categories returns all categories in layer order.
func Categories() []Category {
	return []Category{
		CategoryPasswordForm,
		CategoryAuthForm,
		CategoryAuthContainer,
		CategoryOAuthButton,
		CategoryAuthLink,
	}
}

// FallbackPolicy controls what the password layer emits when a password input
// has neither a form ancestor nor a keyword-named container ancestor.
type FallbackPolicy int

const (
	// FallbackElement emits the bare password input itself. This is the
	// default: a free-floating password field is still a login surface.
	FallbackElement FallbackPolicy = iota
	// FallbackSuppress drops the detection entirely.
	FallbackSuppress
)

// String returns the configuration token for the policy.
func (p FallbackPolicy) String() string {
	switch p {
	case FallbackElement:
		return "element"
	case FallbackSuppress:
		return "suppress"
	default:
		return "unknown"
	}
}

// ParseFallbackPolicy converts a configuration token into a FallbackPolicy.
func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch s {
	case "element", "":
		return FallbackElement, nil
	case "suppress":
		return FallbackSuppress, nil
	default:
		return 0, fmt.Errorf("detect: unknown fallback policy %q (want element or suppress)", s)
	}
}

// Detection is a single finding produced by one layer. Detections are value
// objects: created by a layer, deduplicated by aggregation, never mutated
// afterward.
type Detection struct {
	// Category is the heuristic that produced this finding.
	Category Category `json:"category"`

	// HTML is the serialized markup of the matched subtree, captured at
	// detection time and clipped to the snippet limit.
	HTML string `json:"html"`

	// Label carries the visible text for clickable controls (OAuth buttons,
	// auth links), empty for structural matches.
	Label string `json:"label,omitempty"`

	// Context describes why the layer matched, for display next to the snippet.
	Context string `json:"context,omitempty"`

	// Fingerprint is a stable hash of the snippet prefix, for spotting
	// byte-identical fragments across scans.
	Fingerprint uint32 `json:"fingerprint"`

	// path is the structural identity of the matched node; aggregation keys
	// on it, the wire format does not carry it.
	path dom.Path
}

// Path returns the structural identity of the matched node.
func (d Detection) Path() dom.Path {
	return d.path
}

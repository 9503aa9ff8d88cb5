package detect

import "strings"

// KeywordSet is the shared authentication vocabulary. Every keyword-driven
// layer matches against this one list so that tuning it retunes form,
// container, and placeholder matching together.
var KeywordSet = []string{
	"login",
	"signin",
	"auth",
	"username",
	"password",
	"email",
	"oauth",
	"sso",
	"credentials",
}

// DefaultProviders is the default allow-list for the OAuth button layer.
// Matching is provider-aware on purpose: "continue with" alone is too weak,
// the phrase has to name a known identity provider.
var DefaultProviders = []string{
	"google",
	"facebook",
	"github",
	"microsoft",
	"apple",
	"twitter",
	"linkedin",
}

// authInputNames are input name attributes that identify a form as an
// authentication form even when the form's own attributes say nothing.
// Covers the common rails-style nested names too.
var authInputNames = []string{
	"username",
	"user",
	"login",
	"email",
	"password",
	"passwd",
	"pass",
	"user_name",
	"user_email",
	"user_login",
	"session[email]",
	"session[password]",
	"credentials",
}

// linkPathPatterns are the URL path fragments that mark a link as pointing at
// an authentication endpoint. Matched against the normalized path only, query
// string and fragment stripped.
var linkPathPatterns = []string{
	"/login",
	"/signin",
	"/auth/",
	"/sso",
	"/oauth",
}

// containsKeyword reports whether s contains any member of KeywordSet.
// The input is expected to be lowercased already.
func containsKeyword(s string) bool {
	if s == "" {
		return false
	}
	for _, kw := range KeywordSet {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// matchesAuthInputName reports whether a lowercased name attribute contains
// one of the known auth input names.
func matchesAuthInputName(name string) bool {
	if name == "" {
		return false
	}
	for _, candidate := range authInputNames {
		if strings.Contains(name, candidate) {
			return true
		}
	}
	return false
}

// normalizeProviders lowercases and trims a provider allow-list, dropping
// empty entries.
func normalizeProviders(providers []string) []string {
	out := make([]string, 0, len(providers))
	for _, p := range providers {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

package detect

import (
	"unicode/utf8"

	"github.com/spaolacci/murmur3"

	"github.com/authscope/authscope/pkg/defaults"
)

// clipSnippet bounds a serialized fragment to the snippet limit, appending a
// truncation marker when anything was cut. The cut backs up to a rune
// boundary so the snippet stays valid UTF-8.
func clipSnippet(s string) string {
	if len(s) <= defaults.SnippetMax {
		return s
	}
	cut := defaults.SnippetMax
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + defaults.SnippetMarker
}

// fingerprint hashes the snippet prefix into a stable 32-bit value. It is
// informational: aggregation dedups on structural identity, not on content,
// so two identical-looking fragments at different positions both survive.
func fingerprint(s string) uint32 {
	if len(s) > defaults.FingerprintPrefix {
		cut := defaults.FingerprintPrefix
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return murmur3.Sum32([]byte(s))
}

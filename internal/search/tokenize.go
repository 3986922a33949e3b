package search

import (
	"strings"
	"unicode"
)

// Tokenize lowercases and splits text into search tokens, additionally
// splitting camelCase and snake_case/kebab-case identifiers so a query for
// "format" matches a symbol named formatDate, and a query for
// "formatdate" (no separators) matches it as a single fused token too
// (§4.7: "formatDate matches both format and formatdate").
func Tokenize(text string) []string {
	var out []string
	for _, raw := range splitOnNonIdentifier(text) {
		if raw == "" {
			continue
		}
		parts := splitIdentifierCase(raw)
		fused := strings.ToLower(strings.Join(parts, ""))
		if len(parts) > 1 {
			out = append(out, fused)
		} else if fused != "" {
			out = append(out, fused)
		}
		for _, p := range parts {
			lp := strings.ToLower(p)
			if lp != "" && lp != fused {
				out = append(out, lp)
			}
		}
	}
	return out
}

// splitOnNonIdentifier breaks text on whitespace and punctuation other than
// the underscore/hyphen that camelCase splitting needs to see.
func splitOnNonIdentifier(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		if r == '_' || r == '-' {
			return false
		}
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// splitIdentifierCase splits one identifier-ish token on underscores,
// hyphens, and camelCase boundaries (lower-to-upper, and the last capital
// of an acronym run before a new word, e.g. "HTTPServer" -> HTTP, Server).
func splitIdentifierCase(s string) []string {
	var words []string
	var cur []rune
	runes := []rune(s)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = nil
		}
	}
	for i, r := range runes {
		if r == '_' || r == '-' {
			flush()
			continue
		}
		if i > 0 {
			prev := runes[i-1]
			switch {
			case unicode.IsLower(prev) && unicode.IsUpper(r):
				flush()
			case unicode.IsUpper(prev) && unicode.IsUpper(r) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				flush()
			case unicode.IsLetter(prev) && unicode.IsDigit(r), unicode.IsDigit(prev) && unicode.IsLetter(r):
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

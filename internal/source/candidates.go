package source

import (
	"strings"
	"unicode"

	"github.com/dgallion1/molgest/internal/token"
)

// DefaultMinLength is used when a reader is given no minimum.
const DefaultMinLength = 3

// Candidates splits text into whitespace-separated fields and keeps the
// ones that scan as notation. Fields made only of letters must be written
// in upper-case organic symbols, which filters most prose.
func Candidates(text string, minLen int) []string {
	if minLen <= 0 {
		minLen = DefaultMinLength
	}
	var out []string
	for _, f := range strings.Fields(text) {
		f = trimField(f)
		if len(f) < minLen {
			continue
		}
		if LooksLikeNotation(f) {
			out = append(out, f)
		}
	}
	return out
}

// trimField strips quoting and sentence punctuation around a field.
func trimField(f string) string {
	f = strings.Trim(f, "\"'`,;!?")
	f = strings.TrimRight(f, ".")
	// Notation never opens with a branch, so a leading parenthesis and its
	// unbalanced partner belong to the prose.
	f = strings.TrimLeft(f, "(")
	for strings.HasSuffix(f, ")") && strings.Count(f, ")") > strings.Count(f, "(") {
		f = f[:len(f)-1]
	}
	return f
}

// LooksLikeNotation reports whether s scans cleanly and plausibly is a
// structure rather than a word.
func LooksLikeNotation(s string) bool {
	toks, err := token.Scan(s)
	if err != nil {
		return false
	}
	atoms := 0
	structural, lower := false, false
	for _, t := range toks {
		switch t.Kind {
		case token.Atom:
			atoms++
			if strings.HasPrefix(t.Text, "[") {
				structural = true
			} else if t.Text != "*" && !unicode.IsUpper(rune(t.Text[0])) {
				lower = true
			}
		case token.Dot:
			return false
		default:
			structural = true
		}
	}
	return atoms > 0 && (structural || !lower)
}

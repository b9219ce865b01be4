package nexus

import "strings"

// StripComments removes square-bracket comments from s. Comments nest, so a
// ']' only closes the outermost comment once every inner one has closed.
// Characters inside a quoted token are literal: brackets in quoted taxon
// names survive, and a quote character inside an open comment does not start
// a quoted token. A stray ']' with no open comment passes through unchanged,
// and an unclosed comment swallows everything to the end of s.
//
// Stripping is idempotent.
func StripComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var (
		depth int
		quote rune
		prev  rune
	)
	for _, r := range s {
		if quote != 0 {
			b.WriteRune(r)
			if r == quote {
				quote = 0
			}
			prev = r
			continue
		}
		if depth > 0 {
			if r == '[' {
				depth++
			} else if r == ']' {
				depth--
			}
			continue
		}
		switch {
		case r == '[':
			depth++
		case (r == '\'' || r == '"') && atTokenStart(prev):
			quote = r
			b.WriteRune(r)
			prev = r
		default:
			b.WriteRune(r)
			prev = r
		}
	}
	return b.String()
}

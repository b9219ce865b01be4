package nexus

import (
	"strings"
	"unicode"
)

// atTokenStart reports whether a token may begin after prev. Quotes only open
// a quoted token at a token boundary, so an apostrophe inside a bare name
// stays literal.
func atTokenStart(prev rune) bool {
	return prev == 0 || unicode.IsSpace(prev)
}

func isWordChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// leadingToken reads the first token of s. A token opening with ' or " runs
// to the next matching quote and may contain any character in between; the
// quotes themselves are not part of the token. Anything else runs to the next
// whitespace. An unterminated quoted token runs to the end of s. rest is
// everything after the token, whitespace intact.
func leadingToken(s string) (token, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if s == "" {
		return "", ""
	}
	if q := s[0]; q == '\'' || q == '"' {
		if i := strings.IndexByte(s[1:], q); i >= 0 {
			return s[1 : 1+i], s[2+i:]
		}
		return s[1:], ""
	}
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}

// ParseTaxa extracts the taxon labels from the body of a TAXLABELS block, in
// declaration order. Quoted labels keep their inner text verbatim and empty
// tokens are dropped. Duplicate labels are preserved here; deduplication
// happens later, when FASTA headers are generated.
func ParseTaxa(body string) []string {
	body = StripComments(body)
	var labels []string
	for body != "" {
		tok, rest := leadingToken(body)
		if tok == "" && strings.TrimSpace(rest) == "" {
			break
		}
		if tok != "" {
			labels = append(labels, tok)
		}
		body = rest
	}
	return labels
}

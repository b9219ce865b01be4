package nexus

import (
	"strings"
	"unicode/utf8"
)

// ExtractBlock searches doc for keyword as a standalone, case-insensitive
// word outside comments and quoted tokens, and returns the text between the
// keyword and its terminating ';'. The terminator must sit at comment depth
// zero outside any quoted token; semicolons inside comments or quoted names
// do not end the block. The returned body has comments stripped and
// surrounding whitespace trimmed.
//
// found is false when the keyword never occurs outside a comment or quote,
// or when no terminator follows it. A missing block is a normal outcome for
// optional sections, so absence is not an error.
func ExtractBlock(doc, keyword string) (body string, found bool) {
	var (
		depth int
		quote rune
		prev  rune
	)
	for i, r := range doc {
		if quote != 0 {
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
			continue
		case (r == '\'' || r == '"') && atTokenStart(prev):
			quote = r
		default:
			if !isWordChar(prev) && keywordAt(doc, i, keyword) {
				return blockBody(doc[i+len(keyword):])
			}
		}
		prev = r
	}
	return "", false
}

// keywordAt reports whether the standalone keyword begins at byte offset i.
// The caller has already checked the left boundary.
func keywordAt(doc string, i int, keyword string) bool {
	if i+len(keyword) > len(doc) {
		return false
	}
	if !strings.EqualFold(doc[i:i+len(keyword)], keyword) {
		return false
	}
	rest := doc[i+len(keyword):]
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return !isWordChar(r)
}

// blockBody accumulates comment-stripped text up to the first ';' at comment
// depth zero outside quotes.
func blockBody(s string) (string, bool) {
	var (
		b     strings.Builder
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
		case r == ';':
			return strings.TrimSpace(b.String()), true
		case (r == '\'' || r == '"') && atTokenStart(prev):
			quote = r
			b.WriteRune(r)
			prev = r
		default:
			b.WriteRune(r)
			prev = r
		}
	}
	return "", false
}

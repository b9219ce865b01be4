package fasta

import (
	"strconv"
	"strings"
	"unicode"
)

// CleanName turns a taxon label into a FASTA-safe header. A surrounding
// quote pair is stripped, then every whitespace character and every
// remaining quote character becomes a single underscore. Everything else,
// including brackets and braces, passes through untouched so names like
// "{A}" or "name[with]bracket" keep their shape.
func CleanName(label string) string {
	if n := len(label); n >= 2 && (label[0] == '\'' || label[0] == '"') && label[n-1] == label[0] {
		label = label[1 : n-1]
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		if unicode.IsSpace(r) || r == '\'' || r == '"' {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// UniqueHeaders cleans every label and disambiguates collisions in order:
// the first occurrence of a cleaned name stays as-is, the Nth occurrence
// gets an _N suffix. The result is parallel to labels.
func UniqueHeaders(labels []string) []string {
	seen := make(map[string]int, len(labels))
	headers := make([]string, len(labels))
	for i, label := range labels {
		name := CleanName(label)
		seen[name]++
		if n := seen[name]; n > 1 {
			name = name + "_" + strconv.Itoa(n)
		}
		headers[i] = name
	}
	return headers
}

package fasta

// Package fasta contains minimal helpers to read and write FASTA formatted
// data used by the project. It intentionally keeps parsing simple and
// conservative.

import (
	"bufio"
	"io"
	"strings"
)

// Record represents a single FASTA record (header and sequence).
type Record struct {
	Header   string
	Sequence string
}

// ParseFasta reads FASTA records from r and returns a slice of Record.
// Lines beginning with '>' denote headers; sequence lines are concatenated.
func ParseFasta(r io.Reader) []Record {
	scanner := bufio.NewScanner(r)
	var records []Record
	var current Record
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			if current.Header != "" {
				records = append(records, current)
			}
			current = Record{Header: line[1:], Sequence: ""}
		} else {
			current.Sequence += strings.TrimSpace(line)
		}
	}
	if current.Header != "" {
		records = append(records, current)
	}
	return records
}

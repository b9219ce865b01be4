package fasta

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriterWraps(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	seq := strings.Repeat("A", 60) + strings.Repeat("C", 20)
	if err := w.Write(Record{Header: "LongSeqTaxon", Sequence: seq}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	want := ">LongSeqTaxon\n" + strings.Repeat("A", 60) + "\n" + strings.Repeat("C", 20) + "\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%q", buf.String())
	}
}

func TestWriterExactBoundary(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.Write(Record{Header: "x", Sequence: strings.Repeat("G", 60)}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	want := ">x\n" + strings.Repeat("G", 60) + "\n"
	if buf.String() != want {
		t.Fatalf("expected a single full line, got %q", buf.String())
	}
}

func TestWriterCustomColumns(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Columns = 4
	if err := w.Write(Record{Header: "x", Sequence: "ACGTACGTAC"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if buf.String() != ">x\nACGT\nACGT\nAC\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestWriterNoWrap(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Columns = -1
	seq := strings.Repeat("T", 100)
	if err := w.Write(Record{Header: "x", Sequence: seq}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if buf.String() != ">x\n"+seq+"\n" {
		t.Fatalf("expected unwrapped sequence, got %q", buf.String())
	}
}

func TestWriterRoundTrip(t *testing.T) {
	records := []Record{
		{Header: "a", Sequence: strings.Repeat("ACGT", 40)},
		{Header: "b", Sequence: "TTT"},
	}
	var buf bytes.Buffer
	if err := NewWriter(&buf).WriteAll(records); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	parsed := ParseFasta(&buf)
	if len(parsed) != 2 {
		t.Fatalf("expected 2 records back, got %d", len(parsed))
	}
	for i := range records {
		if parsed[i] != records[i] {
			t.Fatalf("record %d changed across round trip: %+v", i, parsed[i])
		}
	}
}

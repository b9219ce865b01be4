package main

import (
	"strings"
	"testing"

	"nexus2fasta/internal/fasta"
)

func TestCycleMode(t *testing.T) {
	m := initialModel()
	if m.currentMode != modeSequence {
		t.Fatalf("expected initial mode sequence, got %v", m.currentMode)
	}
	m = m.cycleMode()
	if m.currentMode != modeComposition {
		t.Fatalf("expected composition, got %v", m.currentMode)
	}
	m = m.cycleMode()
	if m.currentMode != modeInfo {
		t.Fatalf("expected info, got %v", m.currentMode)
	}
	m = m.cycleMode()
	if m.currentMode != modeSequence {
		t.Fatalf("expected sequence, got %v", m.currentMode)
	}
}

func TestBuildRightLinesWrap(t *testing.T) {
	m := initialModel()
	m.width = 120
	m.height = 40
	rec := fasta.Record{
		Header:   "seq1",
		Sequence: strings.Repeat("ATG", 50),
	}
	lines := m.buildRightLines(rec)
	if len(lines) < 2 {
		t.Fatalf("expected wrapped lines, got %d", len(lines))
	}
	if got := strings.Join(lines, ""); got != rec.Sequence {
		t.Fatalf("wrapping must preserve the sequence, got %q", got)
	}
}

func TestBuildRightLinesZeroWidth(t *testing.T) {
	m := initialModel()
	rec := fasta.Record{Header: "seq1", Sequence: strings.Repeat("A", 150)}
	lines := m.buildRightLines(rec)
	// width 0 falls back to 60 columns
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines at fallback width, got %d", len(lines))
	}
}

func TestCompositionLines(t *testing.T) {
	lines := compositionLines("AACCGGTT--NN")
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"A: 2", "C: 2", "G: 2", "T: 2", "Gaps:  2", "Other: 2", "GC content: 50.0%"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("composition missing %q in:\n%s", want, joined)
		}
	}
}

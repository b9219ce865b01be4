package fasta

import (
	"fmt"
	"io"
)

// DefaultColumns is the line width sequences wrap at unless a writer says
// otherwise. Most DNA analysis tools expect 60-column FASTA.
const DefaultColumns = 60

// Writer emits FASTA records with the sequence wrapped at Columns
// characters. Columns <= 0 disables wrapping. The final line of a sequence
// may be shorter than Columns; it is never padded.
type Writer struct {
	w       io.Writer
	Columns int
}

// NewWriter returns a Writer wrapping at DefaultColumns.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, Columns: DefaultColumns}
}

// Write emits one record.
func (w *Writer) Write(rec Record) error {
	if _, err := fmt.Fprintf(w.w, ">%s\n", rec.Header); err != nil {
		return err
	}
	seq := rec.Sequence
	if w.Columns <= 0 {
		_, err := fmt.Fprintf(w.w, "%s\n", seq)
		return err
	}
	for start := 0; start < len(seq); start += w.Columns {
		end := start + w.Columns
		if end > len(seq) {
			end = len(seq)
		}
		if _, err := fmt.Fprintf(w.w, "%s\n", seq[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// WriteAll emits every record in order.
func (w *Writer) WriteAll(records []Record) error {
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Package convert turns NEXUS documents into FASTA. It wires the nexus
// parsing layers together, owns the fatal error taxonomy, and handles file
// and gzip plumbing for the CLI and the web UI.
package convert

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"

	"nexus2fasta/internal/fasta"
	"nexus2fasta/internal/nexus"
)

var (
	// ErrNoMatrix reports a document with no usable MATRIX block. Nothing
	// can be recovered from such a file.
	ErrNoMatrix = errors.New("could not find the MATRIX section in the NEXUS file")

	// ErrNoSequences reports a parse that finished without assembling a
	// single sequence. The converter never writes an empty FASTA file
	// silently.
	ErrNoSequences = errors.New("no sequences recovered from the NEXUS file")
)

// Options tunes a conversion.
type Options struct {
	// WrapColumns is the FASTA line width. Zero means the default of 60;
	// negative disables wrapping.
	WrapColumns int
}

// Result is the outcome of a parse. Warnings collect every recoverable
// oddity (skipped matrix lines, taxa without data, a missing TAXLABELS
// block) in the order encountered; callers decide whether and how to show
// them.
type Result struct {
	Records  []fasta.Record
	Warnings []string
}

// Parse converts a NEXUS document into FASTA records.
//
// Taxon labels come from the TAXLABELS block when present, otherwise they
// are discovered from the first matrix paragraph. Headers are cleaned and
// deduplicated over the full taxon list before taxa without sequence data
// are dropped, so suffix numbering stays stable regardless of which taxa
// carried data. A missing MATRIX block yields ErrNoMatrix; a matrix that
// produces no sequences yields ErrNoSequences, with the collected warnings
// still attached to the returned Result so callers can explain why.
func Parse(data []byte) (*Result, error) {
	doc := string(data)
	res := &Result{}

	var taxa []string
	if body, found := nexus.ExtractBlock(doc, "TAXLABELS"); found {
		taxa = nexus.ParseTaxa(body)
	} else {
		res.Warnings = append(res.Warnings, "no TAXLABELS block found, discovering taxon names from the matrix")
	}

	body, found := nexus.ExtractBlock(doc, "MATRIX")
	if !found {
		return nil, ErrNoMatrix
	}

	aln, warnings := nexus.ParseMatrix(body, taxa)
	res.Warnings = append(res.Warnings, warnings...)

	headers := fasta.UniqueHeaders(aln.Taxa)
	for i, label := range aln.Taxa {
		seq := aln.Sequence(i)
		if seq == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("no sequence found for taxon '%s', omitting it", label))
			continue
		}
		res.Records = append(res.Records, fasta.Record{Header: headers[i], Sequence: seq})
	}
	if len(res.Records) == 0 {
		return res, ErrNoSequences
	}
	return res, nil
}

// Convert parses a NEXUS document from r and writes FASTA to w. Nothing is
// written unless parsing succeeds.
func Convert(r io.Reader, w io.Writer, opts Options) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	res, err := Parse(data)
	if err != nil {
		return res, err
	}
	if err := writeRecords(w, res.Records, opts.WrapColumns); err != nil {
		return res, err
	}
	return res, nil
}

// ConvertFile converts the NEXUS file at inPath into a FASTA file at
// outPath. "-" selects stdin or stdout. Gzipped input is detected by its
// magic bytes regardless of name; an outPath ending in ".gz" is compressed.
// The output file is only created after the input parses, so a structural
// failure never leaves an empty or truncated file behind.
func ConvertFile(inPath, outPath string, opts Options) (*Result, error) {
	data, err := readInput(inPath)
	if err != nil {
		return nil, err
	}
	res, err := Parse(data)
	if err != nil {
		return res, err
	}

	if outPath == "-" {
		if err := writeRecords(os.Stdout, res.Records, opts.WrapColumns); err != nil {
			return res, err
		}
		return res, nil
	}

	f, err := os.Create(outPath)
	if err != nil {
		return res, fmt.Errorf("creating %s: %w", outPath, err)
	}
	var w io.Writer = f
	var zw *pgzip.Writer
	if strings.HasSuffix(outPath, ".gz") {
		zw = pgzip.NewWriter(f)
		w = zw
	}
	werr := writeRecords(w, res.Records, opts.WrapColumns)
	if zw != nil {
		if cerr := zw.Close(); werr == nil {
			werr = cerr
		}
	}
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return res, fmt.Errorf("writing %s: %w", outPath, werr)
	}
	return res, nil
}

// readInput slurps a NEXUS document from path or stdin, transparently
// decompressing gzip input sniffed by its magic bytes.
func readInput(path string) ([]byte, error) {
	var br *bufio.Reader
	if path == "-" {
		br = bufio.NewReader(os.Stdin)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		defer f.Close()
		br = bufio.NewReader(f)
	}
	if magic, _ := br.Peek(2); len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := pgzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("reading gzip input: %w", err)
		}
		defer zr.Close()
		data, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("reading gzip input: %w", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return data, nil
}

func writeRecords(w io.Writer, records []fasta.Record, columns int) error {
	fw := fasta.NewWriter(w)
	if columns != 0 {
		fw.Columns = columns
	}
	return fw.WriteAll(records)
}

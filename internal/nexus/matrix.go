package nexus

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Alignment holds the sequence data recovered from a MATRIX block. Taxa keep
// their first-seen order and every fragment attributed to a taxon is kept in
// file order.
type Alignment struct {
	Taxa      []string
	fragments [][]string
}

// Sequence returns the assembled sequence for taxon i: the concatenation of
// its fragments. It is empty when the matrix carried no data for the taxon.
func (a *Alignment) Sequence(i int) string {
	return strings.Join(a.fragments[i], "")
}

// matrixParser is the resolution state for one MATRIX body. All of it is
// local to a single ParseMatrix call.
type matrixParser struct {
	aln      *Alignment
	index    map[string]int // case-folded label -> position in aln.Taxa
	fold     cases.Caser
	next     int  // cycle position the next unnamed line belongs to
	discover bool // registering unseen leading tokens as new taxa
	sawData  bool // a data line appeared since the paragraph started
	warnings []string
}

// ParseMatrix parses the body of a MATRIX block against the known taxa. When
// taxa is empty the parser discovers taxon names from the leading tokens of
// the first paragraph; blank lines separate paragraphs, matching the
// interleaved layout TreeBASE emits.
//
// A line whose first token names a known taxon (compared case-folded, so
// "taxona" matches "TaxonA" and "TaxonSS" matches "Taxonß") contributes the
// rest of the line to that taxon. A line with an unrecognised leading token
// is a continuation of the taxon at the current cycle position, whole line
// attributed, whitespace removed. The cycle position resets on blank lines
// and never wraps within a paragraph: a continuation with no position left is
// skipped and reported. Outside discovery an unrecognised token is never
// registered as a new taxon.
//
// Warnings describe skipped lines. They are returned, not logged, so callers
// decide how to surface them.
func ParseMatrix(body string, taxa []string) (*Alignment, []string) {
	p := &matrixParser{
		aln:      &Alignment{},
		index:    make(map[string]int),
		fold:     cases.Fold(),
		discover: len(taxa) == 0,
	}
	for _, label := range taxa {
		p.register(label)
	}
	for n, line := range strings.Split(StripComments(body), "\n") {
		p.line(n+1, line)
	}
	return p.aln, p.warnings
}

// register adds a taxon. A duplicate label points the folded index at the
// later position, mirroring how declaration order wins during lookup.
func (p *matrixParser) register(label string) int {
	p.aln.Taxa = append(p.aln.Taxa, label)
	p.aln.fragments = append(p.aln.fragments, nil)
	i := len(p.aln.Taxa) - 1
	p.index[p.fold.String(label)] = i
	return i
}

func (p *matrixParser) add(i int, frag string) {
	p.aln.fragments[i] = append(p.aln.fragments[i], frag)
}

func (p *matrixParser) line(n int, line string) {
	if strings.TrimSpace(line) == "" {
		// Paragraph boundary. Discovery only covers the first paragraph
		// with data; leading blank lines do not count.
		if p.sawData {
			p.discover = false
		}
		p.next = 0
		return
	}
	tok, rest := leadingToken(line)
	frag := compact(rest)
	if i, ok := p.index[p.fold.String(tok)]; ok {
		p.resume(i, frag)
		return
	}
	if p.discover {
		p.resume(p.register(tok), frag)
		return
	}
	if p.next < len(p.aln.Taxa) {
		p.add(p.next, compact(line))
		p.next++
		p.sawData = true
		return
	}
	p.warnings = append(p.warnings,
		fmt.Sprintf("matrix line %d: no taxon to attach continuation to, skipping %q", n, strings.TrimSpace(line)))
}

// resume records a named line for taxon i. A name with no fragment points
// the cycle at the taxon itself so the following unnamed lines attach to it;
// a name with data advances past it.
func (p *matrixParser) resume(i int, frag string) {
	if frag != "" {
		p.add(i, frag)
		p.next = i + 1
	} else {
		p.next = i
	}
	p.sawData = true
}

// compact removes every whitespace character, collapsing spaced sequence
// fragments like "T G C" to "TGC".
func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

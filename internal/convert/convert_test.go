package convert

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, doc string) *Result {
	t.Helper()
	res, err := Parse([]byte(doc))
	require.NoError(t, err)
	return res
}

func TestParseSimple(t *testing.T) {
	doc := `
#NEXUS
BEGIN TAXA;
    TAXLABELS T1 T2 T3;
END;
BEGIN CHARACTERS;
    MATRIX
    T1 ACGT
    T2 TGCA
    T3 AAAA
    ;
END;
`
	res := parseString(t, doc)
	assert.Empty(t, res.Warnings)
	require.Len(t, res.Records, 3)
	assert.Equal(t, "T1", res.Records[0].Header)
	assert.Equal(t, "ACGT", res.Records[0].Sequence)
	assert.Equal(t, "T2", res.Records[1].Header)
	assert.Equal(t, "TGCA", res.Records[1].Sequence)
	assert.Equal(t, "T3", res.Records[2].Header)
	assert.Equal(t, "AAAA", res.Records[2].Sequence)
}

func TestParseMissingMatrix(t *testing.T) {
	_, err := Parse([]byte("#NEXUS SIMPLIFIED CONTENT NOMATRIX"))
	assert.ErrorIs(t, err, ErrNoMatrix)
}

func TestParseEmptyMatrix(t *testing.T) {
	doc := `
#NEXUS
BEGIN TAXA;
    TAXLABELS T1 T2;
END;
BEGIN CHARACTERS;
    MATRIX
    ;
END;
`
	res, err := Parse([]byte(doc))
	require.ErrorIs(t, err, ErrNoSequences)
	// The partial result still explains why nothing came out.
	require.NotNil(t, res)
	require.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0], "no sequence found for taxon 'T1'")
	assert.Contains(t, res.Warnings[1], "no sequence found for taxon 'T2'")
}

func TestParseTaxonMissingFromMatrix(t *testing.T) {
	doc := `
#NEXUS
BEGIN TAXA;
    TAXLABELS T1 T2_missing T3;
END;
BEGIN CHARACTERS;
    MATRIX
    T1 ACGT
    T3 AAAA
    ;
END;
`
	res := parseString(t, doc)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "T1", res.Records[0].Header)
	assert.Equal(t, "T3", res.Records[1].Header)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "no sequence found for taxon 'T2_missing'")
}

func TestParseNoTaxlabels(t *testing.T) {
	doc := `
#NEXUS
BEGIN CHARACTERS;
    MATRIX
    T1 ACGT
    T2 TGCA
    ;
END;
`
	res := parseString(t, doc)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "T1", res.Records[0].Header)
	assert.Equal(t, "T2", res.Records[1].Header)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "no TAXLABELS")
}

func TestParseQuotedSpacedNames(t *testing.T) {
	doc := `
#NEXUS
BEGIN TAXA; TAXLABELS "taxon two"; END;
BEGIN CHARACTERS; MATRIX "taxon two" TGCA; END;
`
	res := parseString(t, doc)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "taxon_two", res.Records[0].Header)
	assert.Equal(t, "TGCA", res.Records[0].Sequence)
}

func TestParseCurlyBraceNames(t *testing.T) {
	doc := `#NEXUS
BEGIN TAXA;
    TAXLABELS {A} B;
END;
BEGIN CHARACTERS;
    MATRIX
    {A} ACGT
    B   TGCA
    ;
END;
`
	res := parseString(t, doc)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "{A}", res.Records[0].Header)
	assert.Equal(t, "ACGT", res.Records[0].Sequence)
}

func TestParseQuotedBrackets(t *testing.T) {
	doc := `#NEXUS
BEGIN TAXA;
    TAXLABELS "name[with]bracket";
END;
BEGIN CHARACTERS;
    MATRIX
    "name[with]bracket" ACGT
    ;
END;
`
	res := parseString(t, doc)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "name[with]bracket", res.Records[0].Header)
	assert.Equal(t, "ACGT", res.Records[0].Sequence)
}

func TestParseCommentsInMatrix(t *testing.T) {
	doc := `#NEXUS
BEGIN TAXA;
    TAXLABELS T1;
END;
BEGIN CHARACTERS;
    MATRIX
    T1 AC[voucher 123]GT
    ;
END;
`
	res := parseString(t, doc)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "ACGT", res.Records[0].Sequence)
}

func TestParseInterleavedContinuation(t *testing.T) {
	doc := `#NEXUS
BEGIN TAXA;
    TAXLABELS A B;
END;
BEGIN CHARACTERS;
    MATRIX
    A ACG
    B ACG

    T
    T
    ;
END;
`
	res := parseString(t, doc)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "ACGT", res.Records[0].Sequence)
	assert.Equal(t, "ACGT", res.Records[1].Sequence)
}

func TestParseCasefoldMatching(t *testing.T) {
	doc := `#NEXUS
BEGIN TAXA;
    TAXLABELS Taxonß;
END;
BEGIN CHARACTERS;
    MATRIX
    TaxonSS ACGT
    ;
END;
`
	res := parseString(t, doc)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Taxonß", res.Records[0].Header)
	assert.Equal(t, "ACGT", res.Records[0].Sequence)
}

func TestParseDuplicateLabelsSuffixed(t *testing.T) {
	doc := `#NEXUS
BEGIN TAXA;
    TAXLABELS T1 T1;
END;
BEGIN CHARACTERS;
    MATRIX
    T1 ACGT
    ;
END;
`
	res, err := Parse([]byte(doc))
	require.NoError(t, err)
	// The folded lookup points at the later duplicate; the first carries
	// no data and is omitted, but the suffix numbering already happened
	// over the full list.
	require.Len(t, res.Records, 1)
	assert.Equal(t, "T1_2", res.Records[0].Header)
	assert.Equal(t, "ACGT", res.Records[0].Sequence)
}

func TestConvertWritesWrapped(t *testing.T) {
	doc := "#NEXUS\nBEGIN TAXA; TAXLABELS L; END;\nMATRIX\nL " +
		strings.Repeat("A", 60) + strings.Repeat("C", 20) + "\n;\n"
	var out bytes.Buffer
	res, err := Convert(strings.NewReader(doc), &out, Options{})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	want := ">L\n" + strings.Repeat("A", 60) + "\n" + strings.Repeat("C", 20) + "\n"
	assert.Equal(t, want, out.String())
}

func TestConvertWrapsAtSixtyColumns(t *testing.T) {
	seqA := strings.Repeat("A", 130)
	seqC := strings.Repeat("C", 130)
	doc := "#NEXUS\nBEGIN TAXA; TAXLABELS T1 T2; END;\nMATRIX\nT1 " + seqA + "\nT2 " + seqC + "\n;\n"
	var out bytes.Buffer
	_, err := Convert(strings.NewReader(doc), &out, Options{})
	require.NoError(t, err)
	want := ">T1\n" + seqA[:60] + "\n" + seqA[60:120] + "\n" + seqA[120:] + "\n" +
		">T2\n" + seqC[:60] + "\n" + seqC[60:120] + "\n" + seqC[120:] + "\n"
	assert.Equal(t, want, out.String())
}

func TestConvertWritesNothingOnFailure(t *testing.T) {
	var out bytes.Buffer
	_, err := Convert(strings.NewReader("no blocks here"), &out, Options{})
	assert.ErrorIs(t, err, ErrNoMatrix)
	assert.Zero(t, out.Len())
}

func TestConvertFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "study.nexus")
	out := filepath.Join(dir, "study.fasta")
	doc := "#NEXUS\nBEGIN TAXA; TAXLABELS T1 T2; END;\nMATRIX\nT1 ACGT\nT2 TGCA\n;\n"
	require.NoError(t, os.WriteFile(in, []byte(doc), 0o644))

	res, err := ConvertFile(in, out, Options{})
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, ">T1\nACGT\n>T2\nTGCA\n", string(data))
}

func TestConvertFileGzipInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "study.nexus.gz")
	out := filepath.Join(dir, "study.fasta")

	var buf bytes.Buffer
	zw := pgzip.NewWriter(&buf)
	_, err := zw.Write([]byte("#NEXUS\nBEGIN TAXA; TAXLABELS T1; END;\nMATRIX\nT1 ACGT\n;\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(in, buf.Bytes(), 0o644))

	_, err = ConvertFile(in, out, Options{})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, ">T1\nACGT\n", string(data))
}

func TestConvertFileGzipOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "study.nexus")
	out := filepath.Join(dir, "study.fasta.gz")
	doc := "#NEXUS\nBEGIN TAXA; TAXLABELS T1; END;\nMATRIX\nT1 ACGT\n;\n"
	require.NoError(t, os.WriteFile(in, []byte(doc), 0o644))

	_, err := ConvertFile(in, out, Options{})
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	zr, err := pgzip.NewReader(f)
	require.NoError(t, err)
	defer zr.Close()
	var plain bytes.Buffer
	_, err = plain.ReadFrom(zr)
	require.NoError(t, err)
	assert.Equal(t, ">T1\nACGT\n", plain.String())
}

func TestConvertFileNoOutputOnParseFailure(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "trees_only.nexus")
	out := filepath.Join(dir, "trees_only.fasta")
	doc := "#NEXUS\nBEGIN TREES;\n    TREE t1 = ((T1,T2),T3);\nEND;\n"
	require.NoError(t, os.WriteFile(in, []byte(doc), 0o644))

	_, err := ConvertFile(in, out, Options{})
	require.ErrorIs(t, err, ErrNoMatrix)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "output file must not be created on parse failure")
}

func TestConvertFileMissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := ConvertFile(filepath.Join(dir, "no_such_file.nexus"), filepath.Join(dir, "out.fasta"), Options{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoMatrix)
	assert.NotErrorIs(t, err, ErrNoSequences)
}

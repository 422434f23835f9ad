package genome

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFamily(t *testing.T) {
	cases := []struct {
		header string
		key    string
	}{
		{"NC_001477.1 Dengue virus 1, complete genome", "dengue"},
		{"NC_009942.1 West Nile virus WNV lineage 1", "flavi"},
		{"MN908947.3 Severe acute respiratory syndrome coronavirus 2", "sarscov2"},
		{"NC_004102.1 Hepatitis C virus genotype 1", "hcv"},
	}
	for _, tc := range cases {
		fam, ok := DetectFamily(tc.header)
		require.True(t, ok, tc.header)
		assert.Equal(t, tc.key, fam.Key, tc.header)
	}

	_, ok := DetectFamily("NC_000913.3 Escherichia coli K-12")
	assert.False(t, ok)
}

func TestAnnotateArgs(t *testing.T) {
	args := AnnotateArgs("/opt/micromamba", "/envs/vadr", "in.fa", "out", "/models", "flavi", false)
	assert.Equal(t, []string{
		"/opt/micromamba", "run", "-p", "/envs/vadr",
		"v-annotate.pl", "in.fa",
		"--mdir", "/models", "--mkey", "flavi",
		"--glsearch", "--cpu", "1",
		"out",
	}, args)

	forced := AnnotateArgs("/opt/micromamba", "/envs/vadr", "in.fa", "out", "/models", "flavi", true)
	assert.Contains(t, forced, "-f")
	assert.Equal(t, "out", forced[len(forced)-1])
}

// ftrLine builds a synthetic feature-table row with the columns the
// parser reads: 5 type, 6 name, 11 strand, 23 coordinates.
func ftrLine(ftype, name, strand, coords string) string {
	parts := make([]string, 25)
	for i := range parts {
		parts[i] = "-"
	}
	parts[0] = "1"
	parts[1] = "NC_001477"
	parts[5] = ftype
	parts[6] = name
	parts[11] = strand
	parts[23] = coords
	return strings.Join(parts, "  ")
}

func TestParseFtrLine(t *testing.T) {
	feat, ok := parseFtrLine(ftrLine("CDS", "nonstructural_protein_NS1", "+", "2422..3477:+"))
	require.True(t, ok)
	assert.Equal(t, "CDS", feat.Type)
	assert.Equal(t, 2422, feat.Start)
	assert.Equal(t, 3477, feat.End)
	assert.Equal(t, "+", feat.Strand)
	assert.Equal(t, "nonstructural protein NS1", feat.Product)
	assert.Equal(t, "NS1", feat.GeneName)
	assert.Empty(t, feat.Notes)

	_, ok = parseFtrLine(ftrLine("stem_loop", "3'UTR_SL", "+", "10..20:+"))
	assert.False(t, ok)
}

func TestParseFtrLineMultiSegmentMarksFrameshift(t *testing.T) {
	feat, ok := parseFtrLine(ftrLine("CDS", "NS1_prime", "+", "2422..3000:+,2999..3477:+"))
	require.True(t, ok)
	assert.Equal(t, 2422, feat.Start)
	assert.Equal(t, 3477, feat.End)
	assert.Equal(t, "frameshift_variant_pos_3000", feat.Notes)
}

func TestParseFtrDir(t *testing.T) {
	dir := t.TempDir()
	content := strings.Join([]string{
		"#idx  seq  ...",
		ftrLine("mat_peptide", "capsid_protein_C", "+", "95..436:+"),
		ftrLine("CDS", "envelope_protein_E", "+", "937..2421:+"),
		ftrLine("gene", "POLY", "+", "95..10273:+"),
		ftrLine("CDS", "2K_peptide", "+", "3478..3546:+"),
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "out.vadr.ftr"), []byte(content), 0o644))

	features, err := ParseFtrDir(dir)
	require.NoError(t, err)
	require.Len(t, features, 4)

	// sorted by start; mat_peptide emitted as CDS
	assert.Equal(t, "CDS", features[0].Type)
	assert.Equal(t, 95, features[0].Start)
	assert.Equal(t, "C", features[0].GeneName)
	assert.Equal(t, "gene", features[1].Type)
	assert.Equal(t, "E", features[2].GeneName)

	// every feature carries a unique identifier, gene-derived when possible
	assert.Equal(t, "C_1", features[0].ID)
	assert.Equal(t, "POLY_2", features[1].ID)
	assert.Equal(t, "E_3", features[2].ID)
	assert.Equal(t, "feature_4", features[3].ID)

	_, err = ParseFtrDir(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .vadr.ftr files")
}

func TestFillSeqID(t *testing.T) {
	features := []Feature{{SeqID: ""}, {SeqID: "kept"}}
	FillSeqID(features, "NC_1")
	assert.Equal(t, "NC_1", features[0].SeqID)
	assert.Equal(t, "kept", features[1].SeqID)
}

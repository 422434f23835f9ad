package genome

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const denvFlatfile = `LOCUS       NC_001477              10735 bp ss-RNA     linear   VRL 01-JAN-2020
DEFINITION  Dengue virus 1, complete genome.
VERSION     NC_001477.1
FEATURES             Location/Qualifiers
     source          1..10735
                     /organism="Dengue virus 1"
     CDS             95..10273
                     /product="polyprotein"
                     /protein_id="NP_059433.1"
     mat_peptide     95..436
                     /product="anchored capsid protein ancC"
                     /protein_id="NP_722457.2"
     mat_peptide     2422..3477
                     /gene="POLY"
                     /product="nonstructural protein NS1"
                     /protein_id="NP_722461.1"
     CDS             complement(10300..10500)
                     /product="hypothetical protein"
                     /note="programmed frameshift at position 10350"
                     /translation="MKF
                     LL"
ORIGIN
        1 agttgttagt ctacgtggac cgacaagaac agtttcgaat cggaagcttg cttaacgtag
//
`

func TestParseGenBankFlatfile(t *testing.T) {
	records, err := ParseGenBank(strings.NewReader(denvFlatfile))
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "NC_001477.1", rec.ID)
	assert.Equal(t, 10735, rec.Length)
	assert.Equal(t, "agttgttagtctacgtggaccgacaagaacagtttcgaatcggaagcttgcttaacgtag", string(rec.Seq))
	require.Len(t, rec.Features, 5)

	poly := rec.Features[1]
	assert.Equal(t, "CDS", poly.Type)
	assert.Equal(t, 95, poly.Start)
	assert.Equal(t, 10273, poly.End)
	assert.Equal(t, "polyprotein", poly.Qualifier("product"))

	minus := rec.Features[4]
	assert.Equal(t, "-", minus.Strand)
	assert.Equal(t, 10300, minus.Start)
	assert.Equal(t, 10500, minus.End)
	// translation continuations join without spaces
	assert.Equal(t, "MKFLL", minus.Qualifier("translation"))
}

func TestGenBankToFeaturesSkipsPolyprotein(t *testing.T) {
	records, err := ParseGenBank(strings.NewReader(denvFlatfile))
	require.NoError(t, err)

	res := GenBankToFeatures(&records[0])
	assert.Equal(t, 1, res.PolyproteinsSkipped)
	assert.Equal(t, 1, res.FrameshiftsDetected)

	var types []string
	for _, f := range res.Features {
		types = append(types, f.Type)
	}
	// 2 mat_peptide -> CDS, 1 hypothetical CDS, 1 frameshift point feature
	assert.Equal(t, []string{"CDS", "CDS", "CDS", "frameshift"}, types)

	ns1 := res.Features[1]
	assert.Equal(t, "NS1", ns1.GeneName)
	assert.Equal(t, "NP_722461.1", ns1.ProteinID)

	fs := res.Features[3]
	assert.Equal(t, 10350, fs.Start)
	assert.Equal(t, fs.Start, fs.End)
}

func TestParseLocationForms(t *testing.T) {
	cases := []struct {
		loc    string
		start  int
		end    int
		strand string
	}{
		{"95..10273", 95, 10273, "+"},
		{"complement(10..20)", 10, 20, "-"},
		{"join(1..5,8..12)", 1, 12, "+"},
		{"complement(join(3..9,15..21))", 3, 21, "-"},
		{"<95..>436", 95, 436, "+"},
		{"42", 42, 42, "+"},
	}
	for _, tc := range cases {
		start, end, strand, ok := parseLocation(tc.loc)
		require.True(t, ok, tc.loc)
		assert.Equal(t, tc.start, start, tc.loc)
		assert.Equal(t, tc.end, end, tc.loc)
		assert.Equal(t, tc.strand, strand, tc.loc)
	}

	_, _, _, ok := parseLocation("join(1..5,")
	assert.False(t, ok)
}

func TestGeneNameFromProduct(t *testing.T) {
	cases := map[string]string{
		"nonstructural protein NS5":    "NS5",
		"anchored capsid protein ancC": "ancC",
		"envelope protein E":           "E",
		"NS2A protein":                 "NS2A",
		"membrane glycoprotein M":      "M",
		"":                             "",
	}
	for product, want := range cases {
		assert.Equal(t, want, GeneNameFromProduct(product), product)
	}
}

func TestFrameshiftPosition(t *testing.T) {
	assert.Equal(t, 1523, FrameshiftPosition("ribosomal slippage at position 1523", 100, 2000))
	assert.Equal(t, 1523, FrameshiftPosition("slippage near 1523", 100, 2000))
	// out-of-range bare number falls back to the midpoint
	assert.Equal(t, 1050, FrameshiftPosition("see ref 99999", 100, 2000))
	assert.Equal(t, 1050, FrameshiftPosition("-1 frameshift", 100, 2000))
}

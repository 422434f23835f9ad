package genome

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTSVRoundTrip(t *testing.T) {
	features := []Feature{
		{
			Action: ActionKeep, SeqID: "NC_1", Source: "GenBank", Type: "CDS",
			Start: 95, End: 436, Strand: "+",
			GeneName: "ancC", Product: "anchored capsid protein ancC",
			ID: "CDS_0", ProteinID: "NP_1", Notes: "",
		},
		{
			Action: ActionDelete, SeqID: "NC_1", Source: "VADR", Type: "gene",
			Start: 1, End: 100, Strand: "-", Product: "dropped by curator",
		},
	}

	path := filepath.Join(t.TempDir(), "review.tsv")
	require.NoError(t, WriteTSVFile(path, features))

	got, err := ReadTSVFile(path)
	require.NoError(t, err)
	assert.Equal(t, features, got)
}

func TestReviewedToGFFDropsDeletedRows(t *testing.T) {
	features := []Feature{
		{Action: ActionKeep, SeqID: "NC_1", Type: "CDS", Start: 1, End: 9, Strand: "+", GeneName: "C"},
		{Action: ActionDelete, SeqID: "NC_1", Type: "CDS", Start: 10, End: 18, Strand: "+"},
		{Action: ActionKeep, SeqID: "NC_1", Type: "gene", Start: 1, End: 18, Strand: "+", ID: "g1"},
	}
	records := ReviewedToGFF(features)
	require.Len(t, records, 2)
	assert.Equal(t, "CDS", records[0].Type)
	assert.Equal(t, "gene", records[1].Type)
}

func TestReviewedToGFFAssignsUniqueCDSIDs(t *testing.T) {
	features := []Feature{
		{Action: ActionKeep, Type: "CDS", Start: 1, End: 9, GeneName: "NS1"},
		{Action: ActionKeep, Type: "CDS", Start: 10, End: 18, ID: "orig7"},
		{Action: ActionKeep, Type: "CDS", Start: 19, End: 27},
	}
	records := ReviewedToGFF(features)
	require.Len(t, records, 3)
	assert.Equal(t, "NS1", records[0].Attribute("ID"))
	assert.Equal(t, "CDS_orig7_2", records[1].Attribute("ID"))
	assert.Equal(t, "CDS_3", records[2].Attribute("ID"))
}

func TestExtractCDSAndProteins(t *testing.T) {
	genome := SeqRecord{ID: "NC_1", Seq: []byte("atgaaatttTAAatgcatTAA")}
	records := []GFFRecord{
		{Type: "CDS", Start: 1, End: 12, Strand: "+", Attributes: []GFFAttribute{
			{"ID", "NS1"}, {"gene", "NS1"}, {"product", "nonstructural protein 1"},
		}},
		// minus strand: revcomp of positions 13..21 (atgcatTAA) is TTAatgcat
		{Type: "CDS", Start: 13, End: 21, Strand: "-", Attributes: []GFFAttribute{
			{"ID", "rev"},
		}},
		{Type: "gene", Start: 1, End: 21, Strand: "+"},
		// out-of-bounds coordinates are skipped, not fatal
		{Type: "CDS", Start: 15, End: 99, Strand: "+"},
	}

	cds, proteins := ExtractCDSAndProteins(genome, records)
	require.Len(t, cds, 2)
	require.Len(t, proteins, 2)

	assert.Equal(t, "TRANSCRIPT_NS1", cds[0].ID)
	assert.Equal(t, "atgaaatttTAA", string(cds[0].Seq))
	assert.Equal(t, "MKF", string(proteins[0].Seq))
	assert.Contains(t, proteins[0].Description, "nonstructural protein 1")

	assert.Equal(t, "TRANSCRIPT_rev", cds[1].ID)
	assert.Equal(t, "TTAatgcat", string(cds[1].Seq))
	assert.Contains(t, proteins[1].Description, "hypothetical protein")
}

func TestWriteGFF3RoundTrip(t *testing.T) {
	records := []GFFRecord{
		{SeqID: "NC_1", Source: "GenBank", Type: "CDS", Start: 95, End: 436, Strand: "+",
			Attributes: []GFFAttribute{{"ID", "C"}, {"product", "capsid protein C"}}},
		{SeqID: "NC_1", Source: "GenBank", Type: "gene", Start: 95, End: 436, Strand: "-"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteGFF3(&buf, "NC_1", 10735, records))
	out := buf.String()
	assert.Contains(t, out, "##gff-version 3\n")
	assert.Contains(t, out, "##sequence-region NC_1 1 10735\n")
	assert.Contains(t, out, "ID=C;product=capsid protein C")

	got, err := ReadGFF3(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "capsid protein C", got[0].Attribute("product"))
	assert.Equal(t, "-", got[1].Strand)
	assert.Empty(t, got[1].Attributes)
}

func TestMaxEndIgnoresDeletedRows(t *testing.T) {
	features := []Feature{
		{Action: ActionKeep, End: 500},
		{Action: ActionDelete, End: 9000},
	}
	assert.Equal(t, 500, MaxEnd(features))
}

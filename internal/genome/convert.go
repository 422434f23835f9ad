package genome

import (
	"fmt"
	"strings"
)

// Feature types carried from GenBank into the review flow. mat_peptide is
// emitted as CDS so snpEff annotates mature-peptide products individually.
var keptGenBankTypes = map[string]bool{
	"CDS": true, "gene": true, "mRNA": true,
	"3'UTR": true, "5'UTR": true, "mat_peptide": true,
}

// ParseResult is the outcome of converting a GenBank record to review
// features.
type ParseResult struct {
	Features            []Feature
	PolyproteinsSkipped int
	FrameshiftsDetected int
}

// GenBankToFeatures converts a GenBank record into review features:
// polyprotein CDS features are dropped (their mature peptides carry the
// useful annotation), source features are ignored, mat_peptide becomes
// CDS, and programmed frameshifts mentioned in note qualifiers become
// point features of type "frameshift".
func GenBankToFeatures(rec *GenBankRecord) ParseResult {
	var res ParseResult
	counter := 0

	for i := range rec.Features {
		f := &rec.Features[i]
		if f.Type == "source" {
			continue
		}
		if f.Type == "CDS" && strings.Contains(strings.ToLower(f.Qualifier("product")), "polyprotein") {
			res.PolyproteinsSkipped++
			continue
		}
		if !keptGenBankTypes[f.Type] {
			continue
		}

		outType := f.Type
		if outType == "mat_peptide" {
			outType = "CDS"
		}
		product := f.Qualifier("product")
		id := f.Qualifier("locus_tag")
		if id == "" {
			id = fmt.Sprintf("%s_%d", outType, counter)
		}
		counter++

		res.Features = append(res.Features, Feature{
			Action:    ActionKeep,
			SeqID:     rec.ID,
			Source:    "GenBank",
			Type:      outType,
			Start:     f.Start,
			End:       f.End,
			Strand:    f.Strand,
			GeneName:  GeneNameFromProduct(product),
			Product:   product,
			ID:        id,
			Gene:      f.Qualifier("gene"),
			ProteinID: f.Qualifier("protein_id"),
		})

		for _, note := range f.Qualifiers["note"] {
			if !strings.Contains(strings.ToLower(note), "frameshift") {
				continue
			}
			pos := FrameshiftPosition(note, f.Start, f.End)
			res.Features = append(res.Features, Feature{
				Action:  ActionKeep,
				SeqID:   rec.ID,
				Source:  "GenBank",
				Type:    "frameshift",
				Start:   pos,
				End:     pos,
				Strand:  f.Strand,
				Product: "programmed frameshift",
				ID:      fmt.Sprintf("frameshift_%d", counter),
				Notes:   note,
			})
			counter++
			res.FrameshiftsDetected++
		}
	}
	return res
}

// FeaturesToGFF converts review features straight to GFF records,
// preserving their identity attributes.
func FeaturesToGFF(features []Feature) []GFFRecord {
	records := make([]GFFRecord, 0, len(features))
	for _, f := range features {
		rec := GFFRecord{
			SeqID:  f.SeqID,
			Source: f.Source,
			Type:   f.Type,
			Start:  f.Start,
			End:    f.End,
			Strand: f.Strand,
		}
		if f.ID != "" {
			rec.Attributes = append(rec.Attributes, GFFAttribute{"ID", f.ID})
		}
		if f.Gene != "" {
			rec.Attributes = append(rec.Attributes, GFFAttribute{"gene", f.Gene})
		}
		if f.Product != "" {
			rec.Attributes = append(rec.Attributes, GFFAttribute{"product", f.Product})
		}
		if f.ProteinID != "" {
			rec.Attributes = append(rec.Attributes, GFFAttribute{"protein_id", f.ProteinID})
		}
		if f.Notes != "" {
			rec.Attributes = append(rec.Attributes, GFFAttribute{"note", f.Notes})
		}
		records = append(records, rec)
	}
	return records
}

// ReviewedToGFF converts an edited review TSV into the final GFF records
// for the snpEff build. Rows marked DELETE are dropped. Every CDS gets a
// unique ID so snpEff can match transcripts: the curated gene name when
// present, else CDS_<original-id>_<n>, else CDS_<n>.
func ReviewedToGFF(features []Feature) []GFFRecord {
	var records []GFFRecord
	cdsCount := 0

	for _, f := range features {
		if f.Action == ActionDelete {
			continue
		}
		rec := GFFRecord{
			SeqID:  f.SeqID,
			Source: f.Source,
			Type:   f.Type,
			Start:  f.Start,
			End:    f.End,
			Strand: f.Strand,
		}

		if f.Type == "CDS" {
			cdsCount++
			uniqueID := f.GeneName
			switch {
			case uniqueID != "":
			case f.ID != "":
				uniqueID = fmt.Sprintf("CDS_%s_%d", f.ID, cdsCount)
			default:
				uniqueID = fmt.Sprintf("CDS_%d", cdsCount)
			}
			rec.Attributes = append(rec.Attributes, GFFAttribute{"ID", uniqueID})
			if f.GeneName != "" {
				rec.Attributes = append(rec.Attributes, GFFAttribute{"gene", f.GeneName})
			}
			if f.Product != "" {
				rec.Attributes = append(rec.Attributes, GFFAttribute{"product", f.Product})
			}
			if f.ProteinID != "" {
				rec.Attributes = append(rec.Attributes, GFFAttribute{"protein_id", f.ProteinID})
			}
		} else {
			if f.ID != "" {
				rec.Attributes = append(rec.Attributes, GFFAttribute{"ID", f.ID})
			}
			if f.GeneName != "" {
				rec.Attributes = append(rec.Attributes, GFFAttribute{"gene", f.GeneName})
			}
			if f.Product != "" {
				rec.Attributes = append(rec.Attributes, GFFAttribute{"product", f.Product})
			}
		}
		records = append(records, rec)
	}
	return records
}

// MaxEnd returns the largest end coordinate among features not marked
// DELETE, for the sequence-region pragma.
func MaxEnd(features []Feature) int {
	max := 0
	for _, f := range features {
		if f.Action == ActionDelete {
			continue
		}
		if f.End > max {
			max = f.End
		}
	}
	return max
}

// ExtractCDSAndProteins pulls every CDS out of the genome by its GFF
// coordinates and returns matching CDS and translated-protein records.
// Record IDs are TRANSCRIPT_<cds-id>: snpEff requires the transcript IDs
// in cds.fa and protein.fa to match the CDS IDs in genes.gff.
func ExtractCDSAndProteins(genome SeqRecord, records []GFFRecord) (cds, proteins []SeqRecord) {
	for _, rec := range records {
		if rec.Type != "CDS" {
			continue
		}
		if rec.Start < 1 || rec.End > len(genome.Seq) || rec.Start > rec.End {
			continue
		}
		seq := make([]byte, rec.End-rec.Start+1)
		copy(seq, genome.Seq[rec.Start-1:rec.End])
		if rec.Strand == "-" {
			seq = ReverseComplement(seq)
		}

		id := rec.Attribute("ID")
		if id == "" {
			id = "unknown"
		}
		gene := rec.Attribute("gene")
		if gene == "" {
			gene = id
		}
		product := rec.Attribute("product")
		if product == "" {
			product = "hypothetical protein"
		}
		transcriptID := "TRANSCRIPT_" + id

		cds = append(cds, SeqRecord{
			ID:          transcriptID,
			Description: fmt.Sprintf("%s [gene=%s]", product, gene),
			Seq:         seq,
		})
		proteins = append(proteins, SeqRecord{
			ID:          transcriptID,
			Description: fmt.Sprintf("%s [gene=%s] [%s]", product, gene, genome.ID),
			Seq:         Translate(seq),
		})
	}
	return cds, proteins
}

package genome

import (
	"encoding/csv"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Review actions a curator can set in the editable TSV.
const (
	ActionKeep   = "KEEP"
	ActionDelete = "DELETE"
)

// Feature is one row of the editable annotation TSV that sits between
// annotation (GenBank parse or VADR) and the snpEff database build. The
// column set matches both producers, so either output feeds genome add.
type Feature struct {
	Action    string
	SeqID     string
	Source    string
	Type      string
	Start     int
	End       int
	Strand    string
	GeneName  string
	Product   string
	ID        string
	Gene      string
	ProteinID string
	Notes     string
}

var tsvHeader = []string{
	"action", "seqid", "source", "type", "start", "end", "strand",
	"gene_name", "product", "ID", "gene", "protein_id", "notes",
}

// WriteTSV writes features in the editable review format.
func WriteTSV(w io.Writer, features []Feature) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(tsvHeader); err != nil {
		return errors.Wrap(err, "writing tsv header")
	}
	for _, f := range features {
		row := []string{
			f.Action, f.SeqID, f.Source, f.Type,
			strconv.Itoa(f.Start), strconv.Itoa(f.End), f.Strand,
			f.GeneName, f.Product, f.ID, f.Gene, f.ProteinID, f.Notes,
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "writing tsv row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing tsv")
}

// WriteTSVFile writes features to path.
func WriteTSVFile(path string, features []Feature) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := WriteTSV(f, features); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}

// ReadTSV parses an edited review TSV back into features.
func ReadTSV(r io.Reader) ([]Feature, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = len(tsvHeader)

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parsing tsv")
	}
	if len(rows) == 0 {
		return nil, errors.New("empty tsv")
	}

	var features []Feature
	for i, row := range rows {
		if i == 0 && row[0] == "action" {
			continue
		}
		start, err := strconv.Atoi(row[4])
		if err != nil {
			return nil, errors.Wrapf(err, "tsv line %d: bad start %q", i+1, row[4])
		}
		end, err := strconv.Atoi(row[5])
		if err != nil {
			return nil, errors.Wrapf(err, "tsv line %d: bad end %q", i+1, row[5])
		}
		features = append(features, Feature{
			Action: row[0], SeqID: row[1], Source: row[2], Type: row[3],
			Start: start, End: end, Strand: row[6],
			GeneName: row[7], Product: row[8], ID: row[9],
			Gene: row[10], ProteinID: row[11], Notes: row[12],
		})
	}
	return features, nil
}

// ReadTSVFile reads features from path.
func ReadTSVFile(path string) ([]Feature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	return ReadTSV(f)
}

var (
	proteinAfter  = regexp.MustCompile(`(?i)protein\s+([A-Za-z0-9_-]+)`)
	proteinBefore = regexp.MustCompile(`(?i)([A-Za-z0-9_-]+)\s+protein`)
	nsPattern     = regexp.MustCompile(`(?i)\b(NS\d+[A-Za-z]?)\b`)
	trailingShort = regexp.MustCompile(`\b([A-Za-z]\w?)\s*$`)
)

// GeneNameFromProduct derives an editable gene name from a product
// description. Curators correct the guesses in the TSV; an empty result
// means no pattern matched and the cell is left for them to fill.
func GeneNameFromProduct(product string) string {
	product = strings.TrimSpace(product)
	if product == "" {
		return ""
	}
	if m := proteinAfter.FindStringSubmatch(product); m != nil {
		return m[1]
	}
	if m := proteinBefore.FindStringSubmatch(product); m != nil {
		return m[1]
	}
	if m := nsPattern.FindStringSubmatch(product); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := trailingShort.FindStringSubmatch(product); m != nil {
		return m[1]
	}
	words := strings.Fields(product)
	if len(words) > 0 {
		first := words[0]
		if len(first) <= 4 || first == strings.ToUpper(first) {
			return first
		}
	}
	return ""
}

var (
	notePosition = regexp.MustCompile(`(?i)(?:position|at|nucleotide)\s+(\d+)`)
	noteNumber   = regexp.MustCompile(`\b(\d+)\b`)
)

// FrameshiftPosition extracts the position of a programmed frameshift from
// a GenBank note. A bare number is only trusted when it falls inside the
// feature; otherwise the feature midpoint is assumed.
func FrameshiftPosition(note string, start, end int) int {
	if m := notePosition.FindStringSubmatch(note); m != nil {
		pos, _ := strconv.Atoi(m[1])
		return pos
	}
	if m := noteNumber.FindStringSubmatch(note); m != nil {
		pos, _ := strconv.Atoi(m[1])
		if start <= pos && pos <= end {
			return pos
		}
	}
	return (start + end) / 2
}

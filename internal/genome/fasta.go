// Package genome implements the viral-genome annotation flow: fetching
// sequences from NCBI, parsing GenBank flatfiles, converting annotation
// between GFF3 and the editable TSV review format, parsing VADR output,
// and laying out snpEff genome databases.
package genome

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// SeqRecord is one FASTA record.
type SeqRecord struct {
	ID          string
	Description string
	Seq         []byte
}

// Header returns the full FASTA header line without the leading '>'.
func (r SeqRecord) Header() string {
	if r.Description == "" {
		return r.ID
	}
	return r.ID + " " + r.Description
}

// ReadFasta parses all records from r.
func ReadFasta(r io.Reader) ([]SeqRecord, error) {
	var records []SeqRecord
	var cur *SeqRecord

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.HasPrefix(line, ">") {
			records = append(records, SeqRecord{})
			cur = &records[len(records)-1]
			header := strings.TrimPrefix(line, ">")
			if i := strings.IndexAny(header, " \t"); i >= 0 {
				cur.ID = header[:i]
				cur.Description = strings.TrimSpace(header[i+1:])
			} else {
				cur.ID = header
			}
			continue
		}
		if cur == nil || line == "" {
			continue
		}
		cur.Seq = append(cur.Seq, []byte(strings.TrimSpace(line))...)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading fasta")
	}
	if len(records) == 0 {
		return nil, errors.New("no fasta records found")
	}
	return records, nil
}

// ReadFastaFile reads a single-record FASTA file, erroring when the file
// holds more than one sequence (viral genome inputs are single-segment).
func ReadFastaFile(path string) (SeqRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return SeqRecord{}, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	records, err := ReadFasta(f)
	if err != nil {
		return SeqRecord{}, errors.Wrapf(err, "parsing %s", path)
	}
	if len(records) != 1 {
		return SeqRecord{}, errors.Errorf("%s holds %d sequences, expected one", path, len(records))
	}
	return records[0], nil
}

// WriteFasta writes records wrapped at 60 columns.
func WriteFasta(w io.Writer, records []SeqRecord) error {
	for _, rec := range records {
		if _, err := fmt.Fprintf(w, ">%s\n", rec.Header()); err != nil {
			return errors.Wrap(err, "writing fasta")
		}
		seq := rec.Seq
		for len(seq) > 0 {
			n := 60
			if len(seq) < n {
				n = len(seq)
			}
			if _, err := fmt.Fprintf(w, "%s\n", seq[:n]); err != nil {
				return errors.Wrap(err, "writing fasta")
			}
			seq = seq[n:]
		}
	}
	return nil
}

// WriteFastaFile writes records to path.
func WriteFastaFile(path string, records []SeqRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := WriteFasta(f, records); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}

var complement = map[byte]byte{
	'A': 'T', 'T': 'A', 'G': 'C', 'C': 'G',
	'a': 't', 't': 'a', 'g': 'c', 'c': 'g',
	'N': 'N', 'n': 'n',
}

// ReverseComplement returns the reverse complement of a nucleotide
// sequence. Ambiguity codes other than N pass through unchanged.
func ReverseComplement(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		c, ok := complement[b]
		if !ok {
			c = b
		}
		out[len(seq)-1-i] = c
	}
	return out
}

// standardCode is the standard genetic code, codon -> amino acid, '*' for
// stop. Codons containing anything but ACGT translate to 'X'.
var standardCode = map[string]byte{
	"TTT": 'F', "TTC": 'F', "TTA": 'L', "TTG": 'L',
	"CTT": 'L', "CTC": 'L', "CTA": 'L', "CTG": 'L',
	"ATT": 'I', "ATC": 'I', "ATA": 'I', "ATG": 'M',
	"GTT": 'V', "GTC": 'V', "GTA": 'V', "GTG": 'V',
	"TCT": 'S', "TCC": 'S', "TCA": 'S', "TCG": 'S',
	"CCT": 'P', "CCC": 'P', "CCA": 'P', "CCG": 'P',
	"ACT": 'T', "ACC": 'T', "ACA": 'T', "ACG": 'T',
	"GCT": 'A', "GCC": 'A', "GCA": 'A', "GCG": 'A',
	"TAT": 'Y', "TAC": 'Y', "TAA": '*', "TAG": '*',
	"CAT": 'H', "CAC": 'H', "CAA": 'Q', "CAG": 'Q',
	"AAT": 'N', "AAC": 'N', "AAA": 'K', "AAG": 'K',
	"GAT": 'D', "GAC": 'D', "GAA": 'E', "GAG": 'E',
	"TGT": 'C', "TGC": 'C', "TGA": '*', "TGG": 'W',
	"CGT": 'R', "CGC": 'R', "CGA": 'R', "CGG": 'R',
	"AGT": 'S', "AGC": 'S', "AGA": 'R', "AGG": 'R',
	"GGT": 'G', "GGC": 'G', "GGA": 'G', "GGG": 'G',
}

// Translate translates a coding sequence with the standard code, stopping
// at the first stop codon (the stop itself is not emitted). A trailing
// partial codon is ignored.
func Translate(cds []byte) []byte {
	var out bytes.Buffer
	upper := bytes.ToUpper(cds)
	for i := 0; i+3 <= len(upper); i += 3 {
		aa, ok := standardCode[string(upper[i:i+3])]
		if !ok {
			aa = 'X'
		}
		if aa == '*' {
			break
		}
		out.WriteByte(aa)
	}
	return out.Bytes()
}

package genome

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// GFFRecord is one GFF3 feature line. Attributes preserve write order.
type GFFRecord struct {
	SeqID      string
	Source     string
	Type       string
	Start      int
	End        int
	Score      string
	Strand     string
	Phase      string
	Attributes []GFFAttribute
}

// GFFAttribute is one key=value pair of the attributes column.
type GFFAttribute struct {
	Key   string
	Value string
}

// Attribute returns the value for key, or "".
func (r *GFFRecord) Attribute(key string) string {
	for _, a := range r.Attributes {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

// WriteGFF3 writes a GFF3 document with the version pragma and a
// sequence-region pragma covering seqID.
func WriteGFF3(w io.Writer, seqID string, length int, records []GFFRecord) error {
	if _, err := fmt.Fprintln(w, "##gff-version 3"); err != nil {
		return errors.Wrap(err, "writing gff header")
	}
	if seqID != "" && length > 0 {
		if _, err := fmt.Fprintf(w, "##sequence-region %s 1 %d\n", seqID, length); err != nil {
			return errors.Wrap(err, "writing gff header")
		}
	}
	for _, rec := range records {
		attrs := "."
		if len(rec.Attributes) > 0 {
			parts := make([]string, 0, len(rec.Attributes))
			for _, a := range rec.Attributes {
				parts = append(parts, a.Key+"="+a.Value)
			}
			attrs = strings.Join(parts, ";")
		}
		score, strand, phase := rec.Score, rec.Strand, rec.Phase
		if score == "" {
			score = "."
		}
		if strand == "" {
			strand = "+"
		}
		if phase == "" {
			phase = "."
		}
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\t%s\n",
			rec.SeqID, rec.Source, rec.Type, rec.Start, rec.End, score, strand, phase, attrs)
		if err != nil {
			return errors.Wrap(err, "writing gff record")
		}
	}
	return nil
}

// WriteGFF3File writes a GFF3 document to path.
func WriteGFF3File(path, seqID string, length int, records []GFFRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := WriteGFF3(f, seqID, length, records); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}

// ReadGFF3 parses the feature lines of a GFF3 document, skipping pragmas
// and comments.
func ReadGFF3(r io.Reader) ([]GFFRecord, error) {
	var records []GFFRecord
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 9 {
			continue
		}
		start, err := strconv.Atoi(parts[3])
		if err != nil {
			return nil, errors.Wrapf(err, "gff line %d: bad start", lineNo)
		}
		end, err := strconv.Atoi(parts[4])
		if err != nil {
			return nil, errors.Wrapf(err, "gff line %d: bad end", lineNo)
		}
		rec := GFFRecord{
			SeqID: parts[0], Source: parts[1], Type: parts[2],
			Start: start, End: end,
			Score: parts[5], Strand: parts[6], Phase: parts[7],
		}
		if parts[8] != "." {
			for _, attr := range strings.Split(parts[8], ";") {
				key, value, found := strings.Cut(attr, "=")
				if found {
					rec.Attributes = append(rec.Attributes, GFFAttribute{Key: key, Value: value})
				}
			}
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading gff")
	}
	return records, nil
}

// ReadGFF3File parses a GFF3 document from disk.
func ReadGFF3File(path string) ([]GFFRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	return ReadGFF3(f)
}

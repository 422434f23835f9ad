package genome

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// GenBankRecord is one entry of a GenBank flatfile: identity, feature
// table, and sequence.
type GenBankRecord struct {
	ID       string
	Length   int
	Features []GenBankFeature
	Seq      []byte
}

// GenBankFeature is one feature-table entry. Start/End are 1-based
// inclusive coordinates spanning the whole location (join() segments are
// collapsed to their overall extent, matching how the downstream GFF is
// built). Qualifier values keep their order of appearance.
type GenBankFeature struct {
	Type       string
	Start      int
	End        int
	Strand     string
	Qualifiers map[string][]string
}

// Qualifier returns the first value of a qualifier, or "".
func (f *GenBankFeature) Qualifier(key string) string {
	if vals := f.Qualifiers[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// ParseGenBank parses all records from a GenBank flatfile.
//
// This is a deliberately narrow reader: it understands LOCUS/VERSION, the
// feature table, and ORIGIN, which is all the annotation flow needs. It
// is not a general GenBank parser.
func ParseGenBank(r io.Reader) ([]GenBankRecord, error) {
	var (
		records []GenBankRecord
		rec     *GenBankRecord
		feat    *GenBankFeature
		qualKey string
		inFeat  bool
		inSeq   bool
	)

	flushFeature := func() {
		if feat != nil {
			rec.Features = append(rec.Features, *feat)
			feat = nil
		}
		qualKey = ""
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")

		switch {
		case strings.HasPrefix(line, "LOCUS"):
			records = append(records, GenBankRecord{})
			rec = &records[len(records)-1]
			inFeat, inSeq = false, false
			fields := strings.Fields(line)
			if len(fields) > 1 {
				rec.ID = fields[1]
			}
			if len(fields) > 2 {
				if n, err := strconv.Atoi(fields[2]); err == nil {
					rec.Length = n
				}
			}
			continue
		case rec == nil:
			continue
		case strings.HasPrefix(line, "VERSION"):
			fields := strings.Fields(line)
			if len(fields) > 1 {
				rec.ID = fields[1]
			}
			continue
		case strings.HasPrefix(line, "FEATURES"):
			inFeat = true
			continue
		case strings.HasPrefix(line, "ORIGIN"):
			flushFeature()
			inFeat, inSeq = false, true
			continue
		case strings.HasPrefix(line, "//"):
			flushFeature()
			inFeat, inSeq = false, false
			continue
		}

		if inSeq {
			for _, chunk := range strings.Fields(line) {
				if _, err := strconv.Atoi(chunk); err == nil {
					continue
				}
				rec.Seq = append(rec.Seq, []byte(strings.ToLower(chunk))...)
			}
			continue
		}
		if !inFeat {
			continue
		}

		// Feature table layout: a new feature has its key at column 6;
		// qualifiers and location continuations are indented to column 22.
		if len(line) > 5 && line[5] != ' ' && strings.HasPrefix(line, "     ") {
			flushFeature()
			fields := strings.Fields(line)
			if len(fields) < 2 {
				continue
			}
			start, end, strand, ok := parseLocation(fields[1])
			if !ok {
				// Location may continue on the next line; keep what we have.
				start, end, strand = 0, 0, "+"
			}
			feat = &GenBankFeature{
				Type:       fields[0],
				Start:      start,
				End:        end,
				Strand:     strand,
				Qualifiers: make(map[string][]string),
			}
			continue
		}

		if feat == nil {
			continue
		}
		content := strings.TrimSpace(line)
		if strings.HasPrefix(content, "/") {
			key, value, hasValue := strings.Cut(content[1:], "=")
			qualKey = key
			if !hasValue {
				feat.Qualifiers[key] = append(feat.Qualifiers[key], "")
				continue
			}
			feat.Qualifiers[key] = append(feat.Qualifiers[key], strings.Trim(value, `"`))
			continue
		}
		// Continuation: either of the location (no qualifier seen yet) or
		// of the last qualifier value.
		if qualKey == "" {
			if start, end, strand, ok := parseLocation(content); ok && feat.Start == 0 {
				feat.Start, feat.End, feat.Strand = start, end, strand
			}
			continue
		}
		vals := feat.Qualifiers[qualKey]
		if len(vals) > 0 {
			sep := " "
			if qualKey == "translation" {
				sep = ""
			}
			vals[len(vals)-1] += sep + strings.Trim(content, `"`)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading genbank")
	}
	if len(records) == 0 {
		return nil, errors.New("no genbank records found")
	}
	return records, nil
}

// ParseGenBankFile parses a GenBank flatfile from disk.
func ParseGenBankFile(path string) ([]GenBankRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	records, err := ParseGenBank(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return records, nil
}

// parseLocation extracts the overall 1-based extent and strand from a
// GenBank location string. complement() flips the strand; join() and
// order() collapse to min..max; partial markers (< >) are dropped.
func parseLocation(loc string) (start, end int, strand string, ok bool) {
	strand = "+"
	if strings.Contains(loc, "complement(") {
		strand = "-"
	}
	cleaned := strings.NewReplacer(
		"complement(", "", "join(", "", "order(", "",
		")", "", "<", "", ">", "",
	).Replace(loc)

	start, end = 0, 0
	for _, segment := range strings.Split(cleaned, ",") {
		lo, hi, found := strings.Cut(segment, "..")
		if !found {
			hi = lo
		}
		a, err1 := strconv.Atoi(strings.TrimSpace(lo))
		b, err2 := strconv.Atoi(strings.TrimSpace(hi))
		if err1 != nil || err2 != nil {
			return 0, 0, strand, false
		}
		if start == 0 || a < start {
			start = a
		}
		if b > end {
			end = b
		}
	}
	return start, end, strand, start > 0
}

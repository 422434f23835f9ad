package genome

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ModelFamily maps a virus family to its VADR model key and the header
// keywords that identify it.
type ModelFamily struct {
	Key     string
	MKey    string
	Viruses []string
}

// ModelFamilies lists the supported VADR model families in detection
// order.
var ModelFamilies = []ModelFamily{
	{Key: "flavi", MKey: "flavi", Viruses: []string{"WNV", "DENV", "ZIKV", "YFV", "JEV", "TBEV", "SLEV"}},
	{Key: "dengue", MKey: "dengue", Viruses: []string{"DENV", "DENGUE"}},
	{Key: "sarscov2", MKey: "sarscov2", Viruses: []string{"SARS-COV-2", "COVID", "CORONAVIRUS"}},
	{Key: "hcv", MKey: "hcv", Viruses: []string{"HCV", "HEPATITIS C"}},
}

// FamilyByKey returns the model family for a key.
func FamilyByKey(key string) (ModelFamily, bool) {
	for _, fam := range ModelFamilies {
		if fam.Key == key {
			return fam, true
		}
	}
	return ModelFamily{}, false
}

// FamilyKeys returns the supported family keys for usage text.
func FamilyKeys() []string {
	keys := make([]string, 0, len(ModelFamilies))
	for _, fam := range ModelFamilies {
		keys = append(keys, fam.Key)
	}
	return keys
}

// DetectFamily matches a FASTA header against the family keyword tables.
func DetectFamily(header string) (ModelFamily, bool) {
	upper := strings.ToUpper(header)
	for _, fam := range ModelFamilies {
		for _, virus := range fam.Viruses {
			if strings.Contains(upper, virus) {
				return fam, true
			}
		}
	}
	return ModelFamily{}, false
}

// AnnotateArgs builds the micromamba-wrapped v-annotate.pl argv. The
// memory-friendly options are deliberate: --glsearch trades Infernal's
// alignment for FASTA's, and --cpu 1 is required alongside it.
func AnnotateArgs(micromamba, envDir, fastaPath, outDir, modelDir, modelKey string, force bool) []string {
	args := []string{
		micromamba, "run", "-p", envDir,
		"v-annotate.pl",
		fastaPath,
		"--mdir", modelDir,
		"--mkey", modelKey,
		"--glsearch",
		"--cpu", "1",
	}
	if force {
		args = append(args, "-f")
	}
	return append(args, outDir)
}

// ftr feature types carried into the review flow.
var keptFtrTypes = map[string]bool{"CDS": true, "mat_peptide": true, "gene": true}

var nsInProduct = regexp.MustCompile(`NS\d+[A-Z]?`)

// ParseFtrDir parses every .vadr.ftr feature table under a VADR output
// directory into review features, sorted by start position. Each feature
// gets a unique identifier, <gene>_<n> when a gene name is known and
// feature_<n> otherwise, so downstream GFF output can reference it.
func ParseFtrDir(dir string) ([]Feature, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.vadr.ftr"))
	if err != nil {
		return nil, errors.Wrap(err, "globbing ftr files")
	}
	if len(matches) == 0 {
		return nil, errors.Errorf("no .vadr.ftr files under %s", dir)
	}

	var features []Feature
	for _, path := range matches {
		fromFile, err := parseFtrFile(path)
		if err != nil {
			return nil, err
		}
		features = append(features, fromFile...)
	}
	sort.SliceStable(features, func(i, j int) bool {
		return features[i].Start < features[j].Start
	})
	for i := range features {
		if features[i].GeneName != "" {
			features[i].ID = fmt.Sprintf("%s_%d", features[i].GeneName, i+1)
		} else {
			features[i].ID = fmt.Sprintf("feature_%d", i+1)
		}
	}
	return features, nil
}

func parseFtrFile(path string) ([]Feature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	var features []Feature
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		feat, ok := parseFtrLine(line)
		if ok {
			features = append(features, feat)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return features, nil
}

// parseFtrLine parses one whitespace-delimited .vadr.ftr row. The columns
// of interest (0-based): 5 feature type, 6 feature name, 11 strand, 23
// sequence coordinates. Multi-segment coordinate strings mark programmed
// frameshifts at the segment junctions.
func parseFtrLine(line string) (Feature, bool) {
	parts := strings.Fields(line)
	if len(parts) < 24 {
		return Feature{}, false
	}
	ftype := parts[5]
	if !keptFtrTypes[ftype] {
		return Feature{}, false
	}

	coords := strings.Split(parts[23], ",")
	start, _, ok := parseFtrSegment(coords[0])
	if !ok {
		return Feature{}, false
	}
	_, end, ok := parseFtrSegment(coords[len(coords)-1])
	if !ok {
		return Feature{}, false
	}

	product := strings.ReplaceAll(parts[6], "_", " ")
	feat := Feature{
		Action:  ActionKeep,
		Source:  "VADR",
		Type:    ftype,
		Start:   start,
		End:     end,
		Strand:  parts[11],
		Product: product,
	}
	if feat.Type == "mat_peptide" {
		feat.Type = "CDS"
	}

	if len(coords) > 1 {
		junctions := make([]string, 0, len(coords)-1)
		for _, segment := range coords[:len(coords)-1] {
			_, segEnd, ok := parseFtrSegment(segment)
			if ok {
				junctions = append(junctions, strconv.Itoa(segEnd))
			}
		}
		feat.Notes = "frameshift_variant"
		if len(junctions) > 0 {
			feat.Notes = fmt.Sprintf("frameshift_variant_pos_%s", strings.Join(junctions, ","))
		}
	}

	feat.GeneName = vadrGeneName(ftype, product)
	feat.Gene = feat.GeneName
	return feat, true
}

// parseFtrSegment parses one "start..end:strand" coordinate segment.
func parseFtrSegment(segment string) (start, end int, ok bool) {
	segment = strings.TrimSuffix(strings.TrimSuffix(segment, ":+"), ":-")
	lo, hi, found := strings.Cut(segment, "..")
	if !found {
		return 0, 0, false
	}
	start, err1 := strconv.Atoi(lo)
	end, err2 := strconv.Atoi(hi)
	return start, end, err1 == nil && err2 == nil
}

// vadrGeneName maps a VADR product description onto the short flavivirus
// gene names curators expect.
func vadrGeneName(ftype, product string) string {
	lower := strings.ToLower(product)
	switch {
	case nsInProduct.MatchString(strings.ToUpper(product)):
		return nsInProduct.FindString(strings.ToUpper(product))
	case strings.Contains(lower, "capsid"):
		return "C"
	case strings.Contains(lower, "envelope"):
		return "E"
	case strings.Contains(lower, "membrane") && !strings.Contains(lower, "precursor"):
		return "M"
	case strings.Contains(product, "prM") || strings.Contains(lower, "precursor"):
		return "prM"
	case ftype == "gene":
		return product
	}
	return ""
}

// FillSeqID stamps seqID onto features that lack one; the .vadr.ftr
// parser cannot always trust its sequence-name column to match the input
// FASTA header.
func FillSeqID(features []Feature, seqID string) {
	for i := range features {
		if features[i].SeqID == "" {
			features[i].SeqID = seqID
		}
	}
}

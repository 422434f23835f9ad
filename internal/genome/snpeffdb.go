package genome

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/sahlab/labctl/internal/registry"
)

// BuildRequest describes one snpEff database build: a curated genome,
// its reviewed features, and the snpEff installation to build against.
type BuildRequest struct {
	GenomeID   string
	FastaPath  string
	TSVPath    string
	Invocation registry.Invocation
	Force      bool
	DryRun     bool
}

// BuildResult reports what AddGenome wrote.
type BuildResult struct {
	DataDir    string
	CDSCount   int
	ConfigLine bool // whether snpEff.config gained a new entry
	BuildArgs  []string
}

// AddGenome stages a genome into the snpEff data layout and runs the
// database build:
//
//	<snpeff-home>/data/<id>/sequences.fa
//	<snpeff-home>/data/<id>/genes.gff
//	<snpeff-home>/data/<id>/cds.fa
//	<snpeff-home>/data/<id>/protein.fa
//
// plus a "<id>.genome : <id>" line in snpEff.config when missing. An
// existing data directory is refused unless Force is set.
func AddGenome(ctx context.Context, log *slog.Logger, req BuildRequest) (*BuildResult, error) {
	seq, err := ReadFastaFile(req.FastaPath)
	if err != nil {
		return nil, err
	}
	features, err := ReadTSVFile(req.TSVPath)
	if err != nil {
		return nil, err
	}
	gff := ReviewedToGFF(features)
	if len(gff) == 0 {
		return nil, errors.New("no features survive review; nothing to build")
	}
	for i := range gff {
		if gff[i].SeqID == "" {
			gff[i].SeqID = req.GenomeID
		}
	}
	cds, proteins := ExtractCDSAndProteins(seq, gff)
	if len(cds) == 0 {
		return nil, errors.New("no CDS features in the reviewed annotation")
	}

	dataDir := filepath.Join(req.Invocation.SnpEffHome, "data", req.GenomeID)
	if _, err := os.Stat(dataDir); err == nil && !req.Force {
		return nil, errors.Errorf("genome %s already staged at %s (use --force to rebuild)", req.GenomeID, dataDir)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating %s", dataDir)
	}

	// The staged FASTA uses the genome ID as its header so snpEff's
	// chromosome names line up with the GFF seqid column.
	staged := seq
	staged.ID = req.GenomeID
	staged.Description = ""
	if err := WriteFastaFile(filepath.Join(dataDir, "sequences.fa"), []SeqRecord{staged}); err != nil {
		return nil, err
	}
	if err := WriteGFF3File(filepath.Join(dataDir, "genes.gff"), req.GenomeID, len(seq.Seq), gff); err != nil {
		return nil, err
	}
	if err := WriteFastaFile(filepath.Join(dataDir, "cds.fa"), cds); err != nil {
		return nil, err
	}
	if err := WriteFastaFile(filepath.Join(dataDir, "protein.fa"), proteins); err != nil {
		return nil, err
	}
	log.Info("staged genome data", "genome", req.GenomeID, "dir", dataDir, "cds", len(cds))

	added, err := ensureConfigEntry(filepath.Join(req.Invocation.SnpEffHome, "snpEff.config"), req.GenomeID)
	if err != nil {
		return nil, err
	}

	res := &BuildResult{
		DataDir:    dataDir,
		CDSCount:   len(cds),
		ConfigLine: added,
	}
	inv := req.Invocation
	inv.Args = []string{"build", "-gff3", "-v", req.GenomeID}
	res.BuildArgs = inv.Command(registry.SnpEffJar)

	if req.DryRun {
		log.Info("dry run; skipping snpEff build", "argv", strings.Join(res.BuildArgs, " "))
		return res, nil
	}

	cmd := exec.CommandContext(ctx, res.BuildArgs[0], res.BuildArgs[1:]...)
	cmd.Dir = req.Invocation.SnpEffHome
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, errors.Wrapf(err, "snpEff build failed:\n%s", tailLines(string(out), 20))
	}
	log.Info("snpEff database built", "genome", req.GenomeID)
	return res, nil
}

// ensureConfigEntry appends "<id>.genome : <id>" to snpEff.config when no
// entry for the genome exists. Reports whether a line was added.
func ensureConfigEntry(configPath, genomeID string) (bool, error) {
	entry := fmt.Sprintf("%s.genome : %s", genomeID, genomeID)

	f, err := os.Open(configPath)
	if err != nil {
		return false, errors.Wrapf(err, "opening %s", configPath)
	}
	prefix := genomeID + ".genome"
	found := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if strings.HasPrefix(strings.TrimSpace(scanner.Text()), prefix) {
			found = true
			break
		}
	}
	scanErr := scanner.Err()
	f.Close()
	if scanErr != nil {
		return false, errors.Wrapf(scanErr, "reading %s", configPath)
	}
	if found {
		return false, nil
	}

	out, err := os.OpenFile(configPath, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return false, errors.Wrapf(err, "appending to %s", configPath)
	}
	_, err = io.WriteString(out, "\n# Custom genome\n"+entry+"\n")
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return false, errors.Wrapf(err, "appending to %s", configPath)
	}
	return true, nil
}

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

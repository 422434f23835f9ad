package main

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sahlab/labctl/internal/genome"
	"github.com/sahlab/labctl/internal/installer"
)

var (
	vadrFamily  string
	vadrOutDir  string
	vadrOutput  string
	vadrForce   bool
	vadrSkipRun bool
)

// genomeVadrCmd represents the genome vadr command.
var genomeVadrCmd = &cobra.Command{
	Use:   "vadr <fasta>",
	Short: "Annotate a genome with VADR",
	Long: `Run VADR's v-annotate.pl on a single-sequence FASTA and convert its
feature table into the editable review TSV. The model family is detected
from the FASTA header; pass --family to override.

The run uses --glsearch --cpu 1, which keeps memory usage inside a login
node's limits.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVadr(cmd, args[0])
	},
}

func init() {
	genomeCmd.AddCommand(genomeVadrCmd)

	genomeVadrCmd.Flags().StringVar(&vadrFamily, "family", "",
		"VADR model family: "+strings.Join(genome.FamilyKeys(), ", ")+" (default: detect from header)")
	genomeVadrCmd.Flags().StringVar(&vadrOutDir, "out-dir", "", "VADR output directory (default: <fasta>_vadr)")
	genomeVadrCmd.Flags().StringVarP(&vadrOutput, "output", "o", "", "Output TSV (default: <id>_features.tsv)")
	genomeVadrCmd.Flags().BoolVarP(&vadrForce, "force", "f", false, "overwrite an existing VADR output directory")
	genomeVadrCmd.Flags().BoolVar(&vadrSkipRun, "skip-vadr", false, "parse an existing output directory instead of running VADR")
}

func runVadr(cmd *cobra.Command, fastaPath string) error {
	s := settings()

	seq, err := genome.ReadFastaFile(fastaPath)
	if err != nil {
		return err
	}

	outDir := vadrOutDir
	if outDir == "" {
		outDir = strings.TrimSuffix(fastaPath, filepath.Ext(fastaPath)) + "_vadr"
	}

	if !vadrSkipRun {
		fam, err := resolveFamily(seq.Header())
		if err != nil {
			return err
		}
		slog.Info("using VADR model family", "family", fam.Key, "sequence", seq.ID)

		modelDir, err := installer.ResolveVadrModelDir(s.VadrEnvDir)
		if err != nil {
			return fmt.Errorf("no VADR environment at %s; run 'labctl install' first", s.VadrEnvDir)
		}
		if n, err := installer.CountVadrModels(s.VadrEnvDir); err != nil || n == 0 {
			return fmt.Errorf("no VADR models under %s; run 'labctl install' first", modelDir)
		}

		argv := genome.AnnotateArgs(s.Micromamba, s.VadrEnvDir, fastaPath, outDir, modelDir, fam.MKey, vadrForce)
		slog.Info("running v-annotate.pl", "out_dir", outDir)
		slog.Debug("vadr argv", "argv", strings.Join(argv, " "))

		run := exec.CommandContext(cmd.Context(), argv[0], argv[1:]...)
		out, err := run.CombinedOutput()
		if err != nil {
			return fmt.Errorf("v-annotate.pl failed: %w\n%s", err, lastOutputLines(string(out), 20))
		}
	}

	features, err := genome.ParseFtrDir(outDir)
	if err != nil {
		return err
	}
	genome.FillSeqID(features, seq.ID)

	tsv := vadrOutput
	if tsv == "" {
		tsv = seq.ID + "_features.tsv"
	}
	if err := genome.WriteTSVFile(tsv, features); err != nil {
		return err
	}

	fmt.Printf("Wrote %d features to %s\n", len(features), tsv)
	fmt.Println("Review the table, then run: labctl genome add", seq.ID, tsv,
		"--fasta", fastaPath)
	return nil
}

func resolveFamily(header string) (genome.ModelFamily, error) {
	if vadrFamily != "" {
		fam, ok := genome.FamilyByKey(vadrFamily)
		if !ok {
			return genome.ModelFamily{}, fmt.Errorf("unknown model family %q (supported: %s)",
				vadrFamily, strings.Join(genome.FamilyKeys(), ", "))
		}
		return fam, nil
	}
	fam, ok := genome.DetectFamily(header)
	if !ok {
		return genome.ModelFamily{}, fmt.Errorf(
			"could not detect a model family from %q; pass --family (%s)",
			header, strings.Join(genome.FamilyKeys(), ", "))
	}
	return fam, nil
}

func lastOutputLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

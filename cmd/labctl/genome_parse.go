package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sahlab/labctl/internal/genome"
)

var parseOutput string

// genomeParseCmd represents the genome parse command.
var genomeParseCmd = &cobra.Command{
	Use:   "parse <genbank-file>",
	Short: "Convert a GenBank record into an editable annotation table",
	Long: `Parse a GenBank flatfile into the tab-separated review table. Polyprotein
CDS features are dropped in favor of their mature peptides, and programmed
frameshifts mentioned in notes become point features.

Edit the table (set the action column to DELETE, correct gene names), then
feed it to 'labctl genome add'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		records, err := genome.ParseGenBankFile(args[0])
		if err != nil {
			return err
		}
		if len(records) > 1 {
			slog.Warn("file holds multiple records, using the first", "count", len(records))
		}
		rec := records[0]

		res := genome.GenBankToFeatures(&rec)
		if len(res.Features) == 0 {
			return fmt.Errorf("no usable features in %s", args[0])
		}
		slog.Info("parsed genbank record",
			"id", rec.ID,
			"features", len(res.Features),
			"polyproteins_skipped", res.PolyproteinsSkipped,
			"frameshifts", res.FrameshiftsDetected)

		base := parseOutput
		if base == "" {
			base = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + "_no_polyprotein"
		}
		tsv, gff := base+".tsv", base+".gff3"

		if err := genome.WriteTSVFile(tsv, res.Features); err != nil {
			return err
		}
		length := rec.Length
		if length == 0 {
			length = genome.MaxEnd(res.Features)
		}
		if err := genome.WriteGFF3File(gff, rec.ID, length, genome.FeaturesToGFF(res.Features)); err != nil {
			return err
		}

		fmt.Printf("Wrote %d features to %s (and %s)\n", len(res.Features), tsv, gff)
		fmt.Println("Review the table, then run: labctl genome add", rec.ID, tsv,
			"--fasta <genome.fasta>")
		return nil
	},
}

func init() {
	genomeCmd.AddCommand(genomeParseCmd)

	genomeParseCmd.Flags().StringVarP(&parseOutput, "output", "o", "", "Output basename (default: <input>_no_polyprotein)")
}

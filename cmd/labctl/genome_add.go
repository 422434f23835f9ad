package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sahlab/labctl/internal/genome"
	"github.com/sahlab/labctl/internal/registry"
)

var (
	addFasta   string
	addProfile string
	addForce   bool
	addDryRun  bool
)

// genomeAddCmd represents the genome add command.
var genomeAddCmd = &cobra.Command{
	Use:   "add <genome-id> <features.tsv>",
	Short: "Build a snpEff database from a reviewed annotation table",
	Long: `Stage a genome and its reviewed features into the snpEff data layout,
extract CDS and protein sequences, register the genome in snpEff.config,
and run the snpEff build.

The build runs against the current profile's snpEff; pass --profile to
build against another registered version.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := settings()
		reg := registry.New(s.RegistryDir)

		info, err := selectProfile(reg)
		if err != nil {
			return err
		}
		slog.Info("building against profile", "profile", info.Name, "snpeff", info.SnpEffHome)

		inv := info.Resolve(nil, os.Getenv)
		res, err := genome.AddGenome(cmd.Context(), slog.Default(), genome.BuildRequest{
			GenomeID:   args[0],
			FastaPath:  addFasta,
			TSVPath:    args[1],
			Invocation: inv,
			Force:      addForce,
			DryRun:     addDryRun,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Staged %d CDS under %s\n", res.CDSCount, res.DataDir)
		if addDryRun {
			fmt.Printf("Would run:\n  %s\n", strings.Join(res.BuildArgs, " "))
			return nil
		}
		fmt.Printf("Database %s built. Annotate with:\n  snpeff %s input.vcf\n", args[0], args[0])
		return nil
	},
}

func init() {
	genomeCmd.AddCommand(genomeAddCmd)

	genomeAddCmd.Flags().StringVar(&addFasta, "fasta", "", "genome FASTA file (required)")
	genomeAddCmd.Flags().StringVar(&addProfile, "profile", "", "build against this profile instead of the current one")
	genomeAddCmd.Flags().BoolVar(&addForce, "force", false, "rebuild over an existing genome data directory")
	genomeAddCmd.Flags().BoolVar(&addDryRun, "dry-run", false, "stage files but do not run the snpEff build")
	_ = genomeAddCmd.MarkFlagRequired("fasta")
}

func selectProfile(reg *registry.Registry) (*registry.Info, error) {
	if addProfile != "" {
		return reg.Get(addProfile)
	}
	info, err := reg.Current()
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fmt.Errorf("no current profile; run 'labctl use <profile>' or pass --profile")
	}
	return info, nil
}

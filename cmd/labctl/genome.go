package main

import (
	"github.com/spf13/cobra"
)

// genomeCmd groups the viral-genome annotation subcommands.
var genomeCmd = &cobra.Command{
	Use:   "genome",
	Short: "Annotate viral genomes and build snpEff databases",
	Long: `The genome subcommands cover the custom-database flow: fetch a sequence
from NCBI, produce an editable annotation table (from a GenBank record or
a VADR run), review it by hand, and build the snpEff database from the
reviewed table.`,
}

func init() {
	rootCmd.AddCommand(genomeCmd)
}

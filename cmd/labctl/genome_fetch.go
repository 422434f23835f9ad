package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/sahlab/labctl/internal/genome"
)

var (
	fetchFormat string
	fetchOutput string
)

// genomeFetchCmd represents the genome fetch command.
var genomeFetchCmd = &cobra.Command{
	Use:   "fetch <accession>",
	Short: "Download a sequence record from NCBI",
	Long: `Download one nuccore record from the NCBI E-utilities in FASTA, GenBank,
or GFF3 format. The download is a single attempt; re-run on transient
failures.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		accession := args[0]
		dest := fetchOutput
		if dest == "" {
			dest = accession + defaultExtension(fetchFormat)
		}

		client := &http.Client{Timeout: 5 * time.Minute}
		if err := genome.Fetch(cmd.Context(), client, accession, fetchFormat, dest); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", dest)
		return nil
	},
}

func init() {
	genomeCmd.AddCommand(genomeFetchCmd)

	genomeFetchCmd.Flags().StringVar(&fetchFormat, "format", genome.FormatFasta, "Record format: fasta, gb, gff3")
	genomeFetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "Output file (default: <accession>.<ext>)")
}

func defaultExtension(format string) string {
	switch format {
	case genome.FormatGenBank:
		return ".gb"
	case genome.FormatGFF:
		return ".gff"
	default:
		return ".fasta"
	}
}

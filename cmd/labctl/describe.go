package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sahlab/labctl/internal/registry"
)

// describeCmd represents the describe command.
var describeCmd = &cobra.Command{
	Use:   "describe [profile]",
	Short: "Show a profile's resolved paths",
	Long: `Print a profile's identity and resolved tool paths. Without an argument
the current profile is described.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		s := settings()
		reg := registry.New(s.RegistryDir)

		var info *registry.Info
		var err error
		if len(args) == 1 {
			info, err = reg.Get(args[0])
		} else {
			info, err = reg.Current()
			if err == nil && info == nil {
				return fmt.Errorf("no current profile selected; run 'labctl use <profile>' first")
			}
		}
		if err != nil {
			return err
		}

		fmt.Print(info.Describe())
		if info.IsCurrent {
			fmt.Println("  Current:   yes")
		}
		fmt.Printf("  File:      %s\n", info.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

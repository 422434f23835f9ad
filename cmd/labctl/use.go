package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sahlab/labctl/internal/registry"
)

// useCmd represents the use command.
var useCmd = &cobra.Command{
	Use:   "use <profile>",
	Short: "Switch the current profile",
	Long: `Repoint the shared current-profile pointer (current.sh) and the stable
wrapper aliases at the named profile. Shells that source current.sh pick
up the switch the next time they source it; already-sourced shells keep
the old version until they re-source.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		s := settings()
		reg := registry.New(s.RegistryDir)
		if err := reg.SetCurrent(args[0]); err != nil {
			return err
		}

		info, err := reg.Current()
		if err != nil {
			return err
		}
		if info != nil {
			fmt.Printf("Current profile: %s (snpEff at %s)\n", info.Name, info.SnpEffHome)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(useCmd)
}

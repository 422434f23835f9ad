package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/sahlab/labctl/internal/registry"
	"github.com/sahlab/labctl/internal/toolver"
)

var (
	registerName      string
	registerMemory    string
	registerOverwrite bool
	registerUse       bool
	registerSkipCheck bool
	registerYes       bool
)

// registerCmd represents the register command.
var registerCmd = &cobra.Command{
	Use:   "register <java-home> <snpeff-home>",
	Short: "Register a snpEff installation as a named profile",
	Long: `Validate a Java runtime and snpEff installation, then persist them as a
named profile in the shared registry together with wrapper shims.

The profile name defaults to the detected snpEff version. Registering an
existing name again is a no-op unless --overwrite is given.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRegister(cmd, args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().StringVarP(&registerName, "name", "n", "", "profile name (default: detected snpEff version)")
	registerCmd.Flags().StringVarP(&registerMemory, "memory", "m", registry.DefaultMemory, "default JVM heap, e.g. 4g or 512m")
	registerCmd.Flags().BoolVar(&registerOverwrite, "overwrite", false, "replace an existing profile of the same name")
	registerCmd.Flags().BoolVar(&registerUse, "use", false, "make the new profile current")
	registerCmd.Flags().BoolVar(&registerSkipCheck, "skip-version-check", false, "skip the snpEff version probe")
	registerCmd.Flags().BoolVarP(&registerYes, "yes", "y", false, "answer yes to confirmation prompts")
}

func runRegister(cmd *cobra.Command, javaHome, snpeffHome string) error {
	s := settings()
	reg := registry.New(s.RegistryDir, registry.WithConfirmer(confirmer()))

	name := registerName
	if name == "" && !registerSkipCheck {
		// Default the profile name to the detected version so the registry
		// reads like a version list.
		detected, err := toolver.DetectSnpEff(cmd.Context(), javaHome, snpeffHome)
		if err != nil {
			return fmt.Errorf("detecting snpEff version for the default name: %w", err)
		}
		name = detected
	}
	if registerOverwrite {
		// Overwriting is destructive for the old registration values, so it
		// gets its own confirmation (--yes answers it for scripts). The name
		// is fully resolved at this point, so a version-derived default is
		// covered the same as an explicit --name.
		if err := confirmOverwrite(reg, name, confirmer()); err != nil {
			return err
		}
	}

	p, err := reg.Register(cmd.Context(), name, javaHome, snpeffHome, registry.RegisterOptions{
		Memory:        registerMemory,
		Overwrite:     registerOverwrite,
		SelectCurrent: registerUse,
		SkipVersion:   registerSkipCheck,
	})
	if err != nil {
		return err
	}

	fmt.Print(p.Describe())
	fmt.Printf("\nActivate with:\n  source %s\n", reg.ProfilePath(p.Name))
	return nil
}

// confirmOverwrite prompts before an existing profile of the same name is
// replaced. A missing profile needs no prompt; a declined prompt aborts
// the registration.
func confirmOverwrite(reg *registry.Registry, name string, confirm registry.Confirmer) error {
	if _, err := os.Lstat(reg.ProfilePath(registry.SanitizeName(name))); err != nil {
		return nil
	}
	ok, err := confirm(fmt.Sprintf("Profile %q exists. Overwrite it?", name))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("overwrite of profile %q declined", name)
	}
	return nil
}

// confirmer returns the prompt used for version-downgrade and similar
// confirmations. --yes short-circuits it for scripted runs; a
// non-interactive session without --yes declines.
func confirmer() registry.Confirmer {
	return func(prompt string) (bool, error) {
		if registerYes {
			return true, nil
		}
		if fi, err := os.Stdin.Stat(); err != nil || fi.Mode()&os.ModeCharDevice == 0 {
			return false, nil
		}
		var ok bool
		if err := huh.NewConfirm().Title(prompt).Value(&ok).Run(); err != nil {
			return false, err
		}
		return ok, nil
	}
}

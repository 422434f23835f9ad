package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sahlab/labctl/internal/installer"
	"github.com/sahlab/labctl/internal/registry"
)

var (
	installCheckOnly  bool
	installManifest   string
	installBaseDir    string
	installSkipVadr   bool
	installNoRegister bool
)

// installCmd represents the install command.
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the snpEff toolchain onto the shared filesystem",
	Long: `Install Java, snpEff, the helper Python packages, and VADR under the
shared base directory. Every step is idempotent: components already in
place are skipped, so re-running after a partial failure resumes where
the previous run stopped. There are no automatic retries.

After a successful install the new toolchain is registered as a profile
and made current when no current profile exists yet.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runInstall(cmd)
	},
}

func init() {
	rootCmd.AddCommand(installCmd)

	installCmd.Flags().BoolVar(&installCheckOnly, "check-only", false, "report missing components without installing")
	installCmd.Flags().StringVar(&installManifest, "manifest", "", "component manifest file (default: embedded manifest)")
	installCmd.Flags().StringVar(&installBaseDir, "base-dir", "", "install root (default: configured base dir)")
	installCmd.Flags().BoolVar(&installSkipVadr, "skip-vadr", false, "skip the VADR annotation environment")
	installCmd.Flags().BoolVar(&installNoRegister, "no-register", false, "do not register a profile after installing")
}

func runInstall(cmd *cobra.Command) error {
	s := settings()
	if installBaseDir != "" {
		s.BaseDir = installBaseDir
	}

	m, err := loadInstallManifest()
	if err != nil {
		return err
	}

	steps := []installer.Step{
		installer.JavaStep(m, s.BaseDir, s.ScratchDir),
		installer.SnpEffStep(m, s.BaseDir, s.ScratchDir),
	}
	steps = append(steps, installer.PythonPackageSteps(m.PythonPackages)...)
	if !installSkipVadr {
		steps = append(steps, installer.VadrStep(m, s.Micromamba, s.VadrEnvDir))
	}

	runner := installer.NewRunner(steps, installCheckOnly)
	summary, err := runner.Run(cmd.Context())
	printSummary(summary)
	if err != nil {
		// includes ErrMissingRequired from --check-only, which exits 1
		return err
	}
	if installCheckOnly {
		fmt.Println("All required components are installed.")
		return nil
	}

	if installNoRegister {
		return nil
	}
	return registerInstalled(cmd, m, s.RegistryDir, s.BaseDir)
}

func loadInstallManifest() (*installer.Manifest, error) {
	if installManifest != "" {
		return installer.LoadManifestFile(installManifest)
	}
	return installer.DefaultManifest()
}

// registerInstalled records the freshly installed toolchain as a profile.
// The install just ran (or verified) this exact snpEff, so the version
// probe is skipped; the profile is named after the manifest version.
func registerInstalled(cmd *cobra.Command, m *installer.Manifest, registryDir, baseDir string) error {
	javaHome, snpeffHome := installer.JavaHome(baseDir), installer.SnpEffHome(baseDir)

	reg := registry.New(registryDir, registry.WithConfirmer(confirmer()))
	current, err := reg.Current()
	if err != nil {
		return err
	}

	p, err := reg.Register(cmd.Context(), m.SnpEff.Version, javaHome, snpeffHome, registry.RegisterOptions{
		SkipVersion:   true,
		SelectCurrent: current == nil,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Registered profile %s\n", p.Name)
	fmt.Printf("Activate with:\n  source %s\n", reg.ProfilePath(p.Name))
	return nil
}

func printSummary(summary *installer.Summary) {
	if summary == nil {
		return
	}
	fmt.Printf("Install run %s\n", summary.RunID)
	for _, name := range summary.Skipped {
		fmt.Printf("  already installed: %s\n", name)
	}
	for _, name := range summary.Completed {
		fmt.Printf("  installed:         %s\n", name)
	}
	for _, name := range summary.Missing {
		fmt.Printf("  missing:           %s\n", name)
	}
	if len(summary.Warnings) > 0 {
		fmt.Fprintln(os.Stderr, "\nCompleted with warnings; optional components failed:")
		for _, w := range summary.Warnings {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", w.Step, w.Reason)
		}
	}
}

package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sahlab/labctl/internal/registry"
)

// SnpEffHome returns where the managed snpEff distribution lives.
func SnpEffHome(baseDir string) string {
	return filepath.Join(baseDir, "snpEff")
}

// SnpEffStep installs the snpEff distribution: skipped when snpEff.jar is
// already present, otherwise the core zip (which wraps everything in a
// single snpEff/ directory) is downloaded and unpacked into place.
func SnpEffStep(m *Manifest, baseDir, scratchDir string) Step {
	home := SnpEffHome(baseDir)
	return Step{
		Name:   "snpeff",
		Detail: fmt.Sprintf("snpEff %s at %s", m.SnpEff.Version, home),
		Check: func(context.Context) (bool, error) {
			_, err := os.Stat(filepath.Join(home, registry.SnpEffJar))
			return err == nil, nil
		},
		Run: func(ctx context.Context) error {
			return installArchive(ctx, m.SnpEff, home, scratchDir, ExtractZip)
		},
	}
}

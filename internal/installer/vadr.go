package installer

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

// VadrStep provisions the VADR environment with micromamba. The step is
// satisfied when the environment exists and its model directory holds at
// least one covariance-model file; otherwise the environment is created
// and then verified: v-annotate.pl must answer -h, and the installed
// version (from the share directory name) must satisfy the manifest's
// minimum constraint. VADR releases are plain semver, so the constraint
// check is a real semver comparison, unlike snpEff's suffixed scheme.
func VadrStep(m *Manifest, micromamba, envDir string) Step {
	return Step{
		Name:   "vadr",
		Detail: fmt.Sprintf("%s/%s environment at %s", m.Vadr.Channel, m.Vadr.Package, envDir),
		Check: func(context.Context) (bool, error) {
			n, err := CountVadrModels(envDir)
			if err != nil {
				return false, nil
			}
			return n > 0, nil
		},
		Run: func(ctx context.Context) error {
			out, err := exec.CommandContext(ctx, micromamba,
				"create", "-y", "-p", envDir, "-c", m.Vadr.Channel, m.Vadr.Package).CombinedOutput()
			if err != nil {
				return errors.Wrapf(err, "micromamba create: %s", out)
			}
			return verifyVadr(ctx, m, micromamba, envDir)
		},
	}
}

func verifyVadr(ctx context.Context, m *Manifest, micromamba, envDir string) error {
	if err := exec.CommandContext(ctx, micromamba, "run", "-p", envDir, "v-annotate.pl", "-h").Run(); err != nil {
		return errors.Wrap(err, "v-annotate.pl -h failed in new environment")
	}

	installed, err := InstalledVadrVersion(envDir)
	if err != nil {
		return err
	}
	if m.Vadr.MinVersion != "" {
		constraint, err := semver.NewConstraint(">= " + m.Vadr.MinVersion)
		if err != nil {
			return errors.Wrapf(err, "bad min_version %q in manifest", m.Vadr.MinVersion)
		}
		v, err := semver.NewVersion(installed)
		if err != nil {
			return errors.Wrapf(err, "unparseable VADR version %q", installed)
		}
		if !constraint.Check(v) {
			return errors.Errorf("VADR %s is below the required minimum %s", installed, m.Vadr.MinVersion)
		}
	}

	n, err := CountVadrModels(envDir)
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.Errorf("no .cm model files under %s", VadrModelDir(envDir))
	}
	return nil
}

// VadrModelDir returns the glob for the environment's model directory;
// the share directory embeds the VADR version.
func VadrModelDir(envDir string) string {
	return filepath.Join(envDir, "share", "vadr-*", "vadr-models")
}

// ResolveVadrModelDir expands the model-directory glob to the concrete
// installed path. v-annotate.pl receives this path verbatim through
// exec, with no shell in between, so the glob has to be resolved here.
func ResolveVadrModelDir(envDir string) (string, error) {
	matches, err := filepath.Glob(VadrModelDir(envDir))
	if err != nil || len(matches) == 0 {
		return "", errors.Errorf("no VADR model directory under %s", envDir)
	}
	return matches[0], nil
}

// CountVadrModels counts the .cm covariance-model files in the
// environment's model directories.
func CountVadrModels(envDir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(VadrModelDir(envDir), "*.cm"))
	if err != nil {
		return 0, errors.Wrap(err, "globbing VADR models")
	}
	return len(matches), nil
}

// InstalledVadrVersion parses the version out of the share/vadr-<version>
// directory name.
func InstalledVadrVersion(envDir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(envDir, "share", "vadr-*"))
	if err != nil || len(matches) == 0 {
		return "", errors.Errorf("no vadr share directory under %s", envDir)
	}
	base := filepath.Base(matches[0])
	return strings.TrimPrefix(base, "vadr-"), nil
}

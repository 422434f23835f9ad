package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// JavaHome returns where the managed Java runtime lives under the shared
// software tree.
func JavaHome(baseDir string) string {
	return filepath.Join(baseDir, "jdk")
}

// JavaStep installs the Java runtime: skipped when <base>/jdk/bin/java is
// already executable, otherwise the manifest tarball is downloaded and
// unpacked, and its single versioned directory is renamed into place.
func JavaStep(m *Manifest, baseDir, scratchDir string) Step {
	home := JavaHome(baseDir)
	return Step{
		Name:   "java",
		Detail: fmt.Sprintf("OpenJDK %s at %s", m.Java.Version, home),
		Check: func(context.Context) (bool, error) {
			st, err := os.Stat(filepath.Join(home, "bin", "java"))
			if err != nil {
				return false, nil
			}
			return st.Mode().IsRegular() && st.Mode()&0o111 != 0, nil
		},
		Run: func(ctx context.Context) error {
			return installArchive(ctx, m.Java, home, scratchDir, ExtractTarGz)
		},
	}
}

// installArchive downloads an archive to scratch, extracts it next to the
// final home, and renames the archive's top-level directory into place.
func installArchive(ctx context.Context, spec ArchiveSpec, home, scratchDir string, extract func(string, string) error) error {
	archive := filepath.Join(scratchDir, filepath.Base(spec.URL))
	if err := Download(ctx, spec.URL, archive); err != nil {
		return err
	}
	defer os.Remove(archive)

	staging, err := os.MkdirTemp(filepath.Dir(home), ".extract-*")
	if err != nil {
		return errors.Wrap(err, "creating staging dir")
	}
	defer os.RemoveAll(staging)

	if err := extract(archive, staging); err != nil {
		return err
	}
	top, err := TopLevelDir(staging)
	if err != nil {
		return err
	}
	if err := os.Rename(top, home); err != nil {
		return errors.Wrapf(err, "moving %s into place at %s", top, home)
	}
	return nil
}

package installer

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ExtractTarGz unpacks a .tar.gz archive into destDir, preserving file
// modes and symlinks. Entries that would escape destDir are rejected.
func ExtractTarGz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return errors.Wrapf(err, "opening %s", archivePath)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "reading gzip %s", archivePath)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "reading tar %s", archivePath)
		}
		target, err := securePath(destDir, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)&0o777); err != nil {
				return errors.Wrapf(err, "creating %s", target)
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, os.FileMode(hdr.Mode)&0o777); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return errors.Wrapf(err, "creating %s", filepath.Dir(target))
			}
			os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return errors.Wrapf(err, "linking %s", target)
			}
		default:
			// Hard links and device nodes do not appear in tool
			// archives; skip quietly.
		}
	}
}

// ExtractZip unpacks a .zip archive into destDir.
func ExtractZip(archivePath, destDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return errors.Wrapf(err, "opening %s", archivePath)
	}
	defer zr.Close()

	for _, entry := range zr.File {
		target, err := securePath(destDir, entry.Name)
		if err != nil {
			return err
		}
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errors.Wrapf(err, "creating %s", target)
			}
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return errors.Wrapf(err, "opening %s in %s", entry.Name, archivePath)
		}
		err = writeEntry(target, rc, entry.Mode()&0o777)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// TopLevelDir returns the single top-level directory inside dir, for
// archives like openjdk tarballs that wrap everything in one versioned
// directory.
func TopLevelDir(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", dir)
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return "", errors.Errorf("expected a single top-level directory in %s, found %d entries", dir, len(entries))
	}
	return filepath.Join(dir, entries[0].Name()), nil
}

func writeEntry(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Dir(target))
	}
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return errors.Wrapf(err, "creating %s", target)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return errors.Wrapf(err, "writing %s", target)
	}
	return errors.Wrapf(out.Close(), "closing %s", target)
}

// securePath joins name under destDir, rejecting absolute names and any
// traversal outside destDir.
func securePath(destDir, name string) (string, error) {
	cleaned := filepath.Clean(name)
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") {
		return "", errors.Errorf("archive entry escapes destination: %q", name)
	}
	return filepath.Join(destDir, cleaned), nil
}

package registry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sahlab/labctl/internal/apperrors"
	"github.com/sahlab/labctl/internal/toolver"
	"github.com/sahlab/labctl/internal/version"
)

// Version floors for snpEff. Below the absolute floor registration hard-
// fails; between the floors it needs interactive confirmation.
const (
	AbsoluteFloor    = "4.0"
	RecommendedFloor = "5.2d"
)

// DefaultDir is the registry location on the shared filesystem when no
// flag, config entry, or SNPEFF_CONFIG_DIR override is given.
const DefaultDir = "/ref/sahlab/software/snpeff_configs"

const (
	profileSuffix = "_env.sh"
	currentLink   = "current.sh"
	binDirName    = "bin"
	switcherName  = "switch_version.sh"
)

// VersionDetector reports the snpEff version reachable through the given
// Java runtime and snpEff home.
type VersionDetector func(ctx context.Context, javaHome, snpeffHome string) (string, error)

// Confirmer asks the operator a yes/no question. It is only consulted for
// versions between the floors; non-interactive callers should wire one
// that returns a fixed answer.
type Confirmer func(prompt string) (bool, error)

// Registry is the profile directory plus its pointer, wrappers, and
// switcher, considered as one unit. All mutating operations are
// synchronous and single-process; two processes mutating the same
// directory concurrently are not protected against (accepted limitation
// for single-operator HPC usage).
type Registry struct {
	dir       string
	generator string
	now       func() time.Time
	detect    VersionDetector
	confirm   Confirmer
}

// Option configures a Registry.
type Option func(*Registry)

// WithVersionDetector replaces the default java+jar probe.
func WithVersionDetector(d VersionDetector) Option {
	return func(r *Registry) { r.detect = d }
}

// WithConfirmer replaces the interactive confirmation prompt.
func WithConfirmer(c Confirmer) Option {
	return func(r *Registry) { r.confirm = c }
}

// WithClock replaces the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithGenerator replaces the generator label embedded in generated files.
func WithGenerator(label string) Option {
	return func(r *Registry) { r.generator = label }
}

// New returns a Registry rooted at dir.
func New(dir string, opts ...Option) *Registry {
	r := &Registry{
		dir:       dir,
		generator: version.Label(),
		now:       time.Now,
		detect:    toolver.DetectSnpEff,
		confirm: func(string) (bool, error) {
			return false, fmt.Errorf("no confirmer configured")
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir returns the registry root directory.
func (r *Registry) Dir() string { return r.dir }

// ProfilePath returns the deterministic file path for a profile name.
func (r *Registry) ProfilePath(name string) string {
	return filepath.Join(r.dir, name+profileSuffix)
}

// CurrentPath returns the path of the current-profile pointer.
func (r *Registry) CurrentPath() string {
	return filepath.Join(r.dir, currentLink)
}

// WrapperDir returns the per-profile wrapper directory.
func (r *Registry) WrapperDir(name string) string {
	return filepath.Join(r.dir, binDirName, name)
}

// SwitcherPath returns the path of the generated switch_version.sh.
func (r *Registry) SwitcherPath() string {
	return filepath.Join(r.dir, switcherName)
}

// RegisterOptions controls Register behavior.
type RegisterOptions struct {
	Memory        string // JVM heap, defaults to DefaultMemory
	Overwrite     bool   // replace an existing profile of the same name
	SelectCurrent bool   // repoint the current pointer at the new profile
	SkipVersion   bool   // skip the snpEff version probe (install bootstrap)
}

// Register validates the tool paths, checks the detected snpEff version
// against the floors, and persists a profile plus its wrapper pair.
//
// Name handling: the name is sanitized into [A-Za-z0-9._-]; empty input
// becomes "default". If a profile with the (sanitized) name already exists
// and Overwrite is false, the existing profile is returned unchanged --
// re-registering is an idempotent no-op, never an implicit destroy.
//
// Nothing is written until every validation has passed: a failed
// registration leaves no partial profile behind.
func (r *Registry) Register(ctx context.Context, name, javaHome, snpeffHome string, opts RegisterOptions) (*Profile, error) {
	name = SanitizeName(name)
	if opts.Memory == "" {
		opts.Memory = DefaultMemory
	}

	javaBin := filepath.Join(javaHome, "bin", "java")
	if !isExecutableFile(javaBin) {
		return nil, apperrors.NewNotFoundError("java executable", javaBin,
			"labctl install  (or pass a Java home containing bin/java)")
	}
	jar := filepath.Join(snpeffHome, SnpEffJar)
	if _, err := os.Stat(jar); err != nil {
		return nil, apperrors.NewNotFoundError("snpEff.jar", jar,
			"labctl install  (or pass the directory containing snpEff.jar)")
	}

	if !opts.SkipVersion {
		detected, err := r.detect(ctx, javaHome, snpeffHome)
		if err != nil {
			return nil, fmt.Errorf("detecting snpEff version: %w", err)
		}
		if err := r.checkVersion(detected); err != nil {
			return nil, err
		}
	}

	path := r.ProfilePath(name)
	if _, err := os.Lstat(path); err == nil && !opts.Overwrite {
		existing, perr := ParseProfileFile(path)
		if perr != nil {
			return nil, fmt.Errorf("profile %q exists but is unreadable: %w", name, perr)
		}
		slog.Debug("profile already registered, keeping existing", "name", name, "path", path)
		return existing, nil
	}

	p := &Profile{
		Name:       name,
		JavaHome:   javaHome,
		SnpEffHome: snpeffHome,
		Memory:     opts.Memory,
		CreatedAt:  r.now().Truncate(time.Second),
		Generator:  r.generator,
	}

	if err := r.ensureWritableDir(r.dir); err != nil {
		return nil, err
	}
	content, err := renderProfileFile(p, path)
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(path, content, 0o755); err != nil {
		return nil, r.wrapWriteError(path, err)
	}
	if err := r.writeWrapperPair(p); err != nil {
		return nil, err
	}
	if err := r.writeSwitcher(); err != nil {
		return nil, err
	}
	slog.Info("profile registered", "name", name, "java", javaHome, "snpeff", snpeffHome)

	if opts.SelectCurrent {
		if err := r.SetCurrent(name); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// checkVersion enforces the floors on a detected snpEff version string.
func (r *Registry) checkVersion(detected string) error {
	if toolver.Compare(detected, AbsoluteFloor) < 0 {
		return apperrors.NewVersionIncompatibleError("snpEff", detected, AbsoluteFloor, true)
	}
	if toolver.Compare(detected, RecommendedFloor) < 0 {
		ok, err := r.confirm(fmt.Sprintf(
			"snpEff %s is older than the recommended %s. Register anyway?",
			detected, RecommendedFloor))
		if err != nil {
			return fmt.Errorf("confirming version downgrade: %w", err)
		}
		if !ok {
			return apperrors.NewVersionIncompatibleError("snpEff", detected, RecommendedFloor, false)
		}
		slog.Warn("registering snpEff below recommended version", "detected", detected, "recommended", RecommendedFloor)
	}
	return nil
}

// writeWrapperPair generates bin/<name>/snpeff and bin/<name>/snpsift.
func (r *Registry) writeWrapperPair(p *Profile) error {
	wdir := r.WrapperDir(p.Name)
	if err := os.MkdirAll(wdir, 0o755); err != nil {
		return r.wrapWriteError(wdir, err)
	}
	for _, t := range []struct{ tool, jar string }{
		{"snpeff", SnpEffJar},
		{"snpsift", SnpSiftJar},
	} {
		content, err := renderShim(p, t.tool, t.jar)
		if err != nil {
			return err
		}
		shim := filepath.Join(wdir, t.tool)
		if err := writeFileAtomic(shim, content, 0o755); err != nil {
			return r.wrapWriteError(shim, err)
		}
	}
	return nil
}

// writeSwitcher regenerates switch_version.sh. Regeneration is idempotent:
// the contents depend only on the registry dir and generator label.
func (r *Registry) writeSwitcher() error {
	content, err := renderSwitcher(r.dir, r.generator)
	if err != nil {
		return err
	}
	path := r.SwitcherPath()
	if err := writeFileAtomic(path, content, 0o755); err != nil {
		return r.wrapWriteError(path, err)
	}
	return nil
}

// SetCurrent repoints the current pointer at the named profile and, when
// that profile has a wrapper pair, repoints the root bin/ aliases to match.
// A missing profile returns NotFoundError and leaves any existing pointer
// untouched. Each repoint is a temp-link-then-rename, so the pointer never
// disappears mid-switch.
func (r *Registry) SetCurrent(name string) error {
	name = SanitizeName(name)
	target := r.ProfilePath(name)
	if _, err := os.Stat(target); err != nil {
		return apperrors.NewNotFoundError("profile", target, "labctl list")
	}

	if err := replaceSymlink(target, r.CurrentPath()); err != nil {
		return r.wrapWriteError(r.CurrentPath(), err)
	}

	wdir := r.WrapperDir(name)
	if st, err := os.Stat(wdir); err == nil && st.IsDir() {
		for _, tool := range []string{"snpeff", "snpsift"} {
			alias := filepath.Join(r.dir, binDirName, tool)
			if err := replaceSymlink(filepath.Join(name, tool), alias); err != nil {
				return r.wrapWriteError(alias, err)
			}
		}
	}
	slog.Info("current profile switched", "name", name)
	return nil
}

// Current returns the profile the current pointer designates, or nil when
// no pointer exists.
func (r *Registry) Current() (*Info, error) {
	target, err := os.Stat(r.CurrentPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolving current pointer: %w", err)
	}
	infos, err := r.List()
	if err != nil {
		return nil, err
	}
	for i := range infos {
		st, serr := os.Stat(infos[i].Path)
		if serr == nil && os.SameFile(st, target) {
			return &infos[i], nil
		}
	}
	return nil, nil
}

// List scans the registry directory for profile files and returns them in
// directory-iteration order; callers needing sorted output sort explicitly.
// IsCurrent is decided by file identity against the resolved pointer, not
// by name equality: differently normalized names can reach the same file.
func (r *Registry) List() ([]Info, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning registry %s: %w", r.dir, err)
	}

	currentStat, _ := os.Stat(r.CurrentPath())

	var infos []Info
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), profileSuffix) {
			continue
		}
		path := filepath.Join(r.dir, e.Name())
		p, perr := ParseProfileFile(path)
		if perr != nil {
			slog.Warn("skipping unreadable profile file", "path", path, "error", perr)
			continue
		}
		info := Info{Profile: *p, Path: path}
		if currentStat != nil {
			if st, serr := os.Stat(path); serr == nil && os.SameFile(st, currentStat) {
				info.IsCurrent = true
			}
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Get returns the named profile, or NotFoundError.
func (r *Registry) Get(name string) (*Info, error) {
	name = SanitizeName(name)
	path := r.ProfilePath(name)
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.NewNotFoundError("profile", path, "labctl list")
	}
	p, err := ParseProfileFile(path)
	if err != nil {
		return nil, err
	}
	info := Info{Profile: *p, Path: path}
	if currentStat, serr := os.Stat(r.CurrentPath()); serr == nil {
		if st, perr := os.Stat(path); perr == nil && os.SameFile(st, currentStat) {
			info.IsCurrent = true
		}
	}
	return &info, nil
}

// ensureWritableDir creates the registry dir if needed and verifies it is
// writable, translating failures into PermissionError with a remediation.
func (r *Registry) ensureWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		if os.IsPermission(err) {
			return apperrors.NewPermissionError(dir,
				fmt.Sprintf("sudo mkdir -p %s && sudo chown $USER %s", dir, dir))
		}
		return fmt.Errorf("creating registry dir: %w", err)
	}
	probe, err := os.CreateTemp(dir, ".labctl-writable*")
	if err != nil {
		if os.IsPermission(err) {
			return apperrors.NewPermissionError(dir,
				fmt.Sprintf("sudo chown -R $USER %s", dir))
		}
		return fmt.Errorf("probing registry dir: %w", err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

func (r *Registry) wrapWriteError(path string, err error) error {
	if os.IsPermission(err) {
		return apperrors.NewPermissionError(path,
			fmt.Sprintf("sudo chown -R $USER %s", r.dir))
	}
	return fmt.Errorf("writing %s: %w", path, err)
}

func isExecutableFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular() && st.Mode()&0o111 != 0
}

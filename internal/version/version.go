// Package version exposes the build identity stamped into a labctl
// binary at release time.
package version

import "runtime"

// Stamped via -ldflags by the release build; a plain source build
// reports "dev".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info is the stamped build identity plus the toolchain and platform
// that produced the running binary.
type Info struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	Platform  string
}

// Get snapshots the identity of the running binary.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String is the bare version, what --version prints by default.
func (i Info) String() string {
	return i.Version
}

// Full spells out commit, build date, and toolchain for bug reports.
func (i Info) Full() string {
	return i.Version + " (" + i.Commit + ") built " + i.BuildDate + " " + i.GoVersion + " " + i.Platform
}

// Label is the short generator label embedded in generated profile files.
func Label() string {
	return "labctl " + Version + " (" + Commit + ")"
}

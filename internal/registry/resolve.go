package registry

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Environment overrides recognized by generated shims and by Resolve.
// Precedence beneath an explicit positional argument, highest first.
const (
	EnvJavaHome    = "SNPEFF_JAVA_HOME"
	EnvSnpEffHome  = "SNPEFF_HOME"
	EnvMemory      = "SNPEFF_MEM"
	EnvRegistryDir = "SNPEFF_CONFIG_DIR"
	EnvScratchDir  = "SCRATCH_DIR"
)

// Jar names resolved relative to the snpEff home.
const (
	SnpEffJar  = "snpEff.jar"
	SnpSiftJar = "SnpSift.jar"
)

var memoryPattern = regexp.MustCompile(`^[0-9]+[gGmM]$`)

// Invocation is one fully resolved wrapper call.
type Invocation struct {
	JavaHome   string
	SnpEffHome string
	Memory     string
	Args       []string // passed through verbatim to the tool
}

// Resolve applies the three-tier override scheme to a wrapper invocation:
// explicit positional argument > environment variable > value frozen at
// registration. Overrides never require regenerating the profile.
//
// Positional parsing is order-dependent; each override can only occupy its
// designated slot:
//
//	arg 1: java home, only if it does not start with '-' AND is an
//	       existing directory
//	arg 2: snpEff home, same rule
//	arg 3: memory, only if it matches ^[0-9]+[gGmM]$
//	then an optional literal "--" is consumed; the rest passes through.
//
// getenv is injected so callers (and tests) control the environment;
// pass os.Getenv for the real thing.
func (p *Profile) Resolve(args []string, getenv func(string) string) Invocation {
	inv := Invocation{
		JavaHome:   p.JavaHome,
		SnpEffHome: p.SnpEffHome,
		Memory:     p.Memory,
	}
	if v := getenv(EnvJavaHome); v != "" {
		inv.JavaHome = v
	}
	if v := getenv(EnvSnpEffHome); v != "" {
		inv.SnpEffHome = v
	}
	if v := getenv(EnvMemory); v != "" {
		inv.Memory = v
	}

	if len(args) > 0 && isDirOverride(args[0]) {
		inv.JavaHome = args[0]
		args = args[1:]
	}
	if len(args) > 0 && isDirOverride(args[0]) {
		inv.SnpEffHome = args[0]
		args = args[1:]
	}
	if len(args) > 0 && memoryPattern.MatchString(args[0]) {
		inv.Memory = args[0]
		args = args[1:]
	}
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	inv.Args = args
	return inv
}

// isDirOverride reports whether an argument may occupy a path-override
// slot: it must not look like a flag and must be an existing directory.
// A flag like "-version" therefore falls through to the tool untouched.
func isDirOverride(arg string) bool {
	if arg == "" || strings.HasPrefix(arg, "-") {
		return false
	}
	st, err := os.Stat(arg)
	return err == nil && st.IsDir()
}

// Command assembles the argv for running the given jar with this
// invocation's resolved runtime, home, and heap.
func (inv Invocation) Command(jar string) []string {
	argv := []string{
		filepath.Join(inv.JavaHome, "bin", "java"),
		"-Xmx" + inv.Memory,
		"-jar",
		filepath.Join(inv.SnpEffHome, jar),
	}
	return append(argv, inv.Args...)
}

// Package registry manages the directory of named snpEff tool profiles on
// the shared filesystem: the profile files themselves, the current-profile
// pointer, the generated wrapper shims, and the version switcher script.
package registry

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

// DefaultName is used when a profile is registered with an empty name.
const DefaultName = "default"

// DefaultMemory is the JVM heap given to snpEff when none is configured.
const DefaultMemory = "4g"

// Profile is a named, persisted set of resolved tool paths and parameters.
// It is pure data: nothing here touches the filesystem or process state.
type Profile struct {
	Name       string
	JavaHome   string
	SnpEffHome string
	Memory     string
	CreatedAt  time.Time
	Generator  string
}

// Info is a Profile together with its registry location and current flag.
type Info struct {
	Profile
	Path      string
	IsCurrent bool
}

var nameSanitizer = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeName coerces arbitrary user input into the profile name alphabet
// [A-Za-z0-9._-], replacing every other character with '_'. Empty or
// whitespace-only input becomes DefaultName.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultName
	}
	return nameSanitizer.ReplaceAllString(name, "_")
}

// Describe returns the profile's self-description: its identity and
// resolved paths, one field per line. This is the explicit counterpart of
// the banner a sourced profile file prints in an interactive shell.
func (p *Profile) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Profile: %s\n", p.Name)
	fmt.Fprintf(&b, "  Java:      %s\n", p.JavaHome)
	fmt.Fprintf(&b, "  snpEff:    %s\n", p.SnpEffHome)
	fmt.Fprintf(&b, "  Memory:    %s\n", p.Memory)
	fmt.Fprintf(&b, "  Created:   %s\n", p.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "  Generator: %s\n", p.Generator)
	return b.String()
}

// Metadata comment keys written into every profile file header. The file
// doubles as the profile's persistent record: ParseProfileFile recovers the
// registration values from these lines without executing anything.
const (
	metaName      = "# Name:"
	metaJava      = "# Java:"
	metaSnpEff    = "# snpEff:"
	metaMemory    = "# Memory:"
	metaGenerator = "# Generated by:"
	metaCreated   = "# Generated at:"
)

// ParseProfileFile reads a profile back from its generated file by scanning
// the metadata comment lines.
func ParseProfileFile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening profile file: %w", err)
	}
	defer f.Close()

	p := &Profile{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, metaName):
			p.Name = strings.TrimSpace(strings.TrimPrefix(line, metaName))
		case strings.HasPrefix(line, metaJava):
			p.JavaHome = strings.TrimSpace(strings.TrimPrefix(line, metaJava))
		case strings.HasPrefix(line, metaSnpEff):
			p.SnpEffHome = strings.TrimSpace(strings.TrimPrefix(line, metaSnpEff))
		case strings.HasPrefix(line, metaMemory):
			p.Memory = strings.TrimSpace(strings.TrimPrefix(line, metaMemory))
		case strings.HasPrefix(line, metaGenerator):
			p.Generator = strings.TrimSpace(strings.TrimPrefix(line, metaGenerator))
		case strings.HasPrefix(line, metaCreated):
			raw := strings.TrimSpace(strings.TrimPrefix(line, metaCreated))
			if t, terr := time.Parse(time.RFC3339, raw); terr == nil {
				p.CreatedAt = t
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("%s is not a profile file: no %q line", path, metaName)
	}
	return p, nil
}

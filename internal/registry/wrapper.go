package registry

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"
)

// The generated files embed the same three-tier override resolution the Go
// side implements in Resolve: positional argument > environment variable >
// frozen profile value. Keep the two in sync.

var profileTemplate = template.Must(template.New("profile").Parse(`#!/bin/bash
# snpEff environment profile
# Generated by: {{.Generator}}
# Generated at: {{.Created}}
# Name: {{.Name}}
# Java: {{.JavaHome}}
# snpEff: {{.SnpEffHome}}
# Memory: {{.Memory}}
#
# Source this file to select the profile for the current shell:
#   source {{.Path}}

export SNPEFF_PROFILE="{{.Name}}"
export JAVA_HOME="${SNPEFF_JAVA_HOME:-{{.JavaHome}}}"
export SNPEFF_JAR="${SNPEFF_HOME:-{{.SnpEffHome}}}/snpEff.jar"

snpeff() {
    local java_home="${SNPEFF_JAVA_HOME:-{{.JavaHome}}}"
    local snpeff_home="${SNPEFF_HOME:-{{.SnpEffHome}}}"
    local mem="${SNPEFF_MEM:-{{.Memory}}}"
    if [[ $# -gt 0 && "$1" != -* && -d "$1" ]]; then java_home="$1"; shift; fi
    if [[ $# -gt 0 && "$1" != -* && -d "$1" ]]; then snpeff_home="$1"; shift; fi
    if [[ $# -gt 0 && "$1" =~ ^[0-9]+[gGmM]$ ]]; then mem="$1"; shift; fi
    if [[ "${1:-}" == "--" ]]; then shift; fi
    "$java_home/bin/java" -Xmx"$mem" -jar "$snpeff_home/snpEff.jar" "$@"
}

snpsift() {
    local java_home="${SNPEFF_JAVA_HOME:-{{.JavaHome}}}"
    local snpeff_home="${SNPEFF_HOME:-{{.SnpEffHome}}}"
    local mem="${SNPEFF_MEM:-{{.Memory}}}"
    if [[ $# -gt 0 && "$1" != -* && -d "$1" ]]; then java_home="$1"; shift; fi
    if [[ $# -gt 0 && "$1" != -* && -d "$1" ]]; then snpeff_home="$1"; shift; fi
    if [[ $# -gt 0 && "$1" =~ ^[0-9]+[gGmM]$ ]]; then mem="$1"; shift; fi
    if [[ "${1:-}" == "--" ]]; then shift; fi
    "$java_home/bin/java" -Xmx"$mem" -jar "$snpeff_home/SnpSift.jar" "$@"
}

if [[ -n "${PS1:-}" ]]; then
    echo "snpEff profile: {{.Name}}"
    echo "  Java:   ${SNPEFF_JAVA_HOME:-{{.JavaHome}}}"
    echo "  snpEff: ${SNPEFF_HOME:-{{.SnpEffHome}}}"
fi
`))

var shimTemplate = template.Must(template.New("shim").Parse(`#!/bin/bash
# {{.Tool}} wrapper for profile "{{.Name}}"
# Generated by: {{.Generator}}
#
# Usage: {{.Tool}} [java-home] [snpeff-home] [memory] [--] [tool args...]
# A leading argument is taken as an override only when it fits its slot:
# an existing directory for the two homes, <digits>[gGmM] for memory.

java_home="${SNPEFF_JAVA_HOME:-{{.JavaHome}}}"
snpeff_home="${SNPEFF_HOME:-{{.SnpEffHome}}}"
mem="${SNPEFF_MEM:-{{.Memory}}}"

if [[ $# -gt 0 && "$1" != -* && -d "$1" ]]; then java_home="$1"; shift; fi
if [[ $# -gt 0 && "$1" != -* && -d "$1" ]]; then snpeff_home="$1"; shift; fi
if [[ $# -gt 0 && "$1" =~ ^[0-9]+[gGmM]$ ]]; then mem="$1"; shift; fi
if [[ "${1:-}" == "--" ]]; then shift; fi

exec "$java_home/bin/java" -Xmx"$mem" -jar "$snpeff_home/{{.Jar}}" "$@"
`))

var switcherTemplate = template.Must(template.New("switcher").Parse(`#!/bin/bash
# switch_version.sh - select the active snpEff profile
# Generated by: {{.Generator}}
#
# Usage:
#   switch_version.sh           list profiles, marking the current one
#   switch_version.sh <name>    make <name> the current profile

REGISTRY_DIR="${SNPEFF_CONFIG_DIR:-{{.Dir}}}"

if [[ $# -eq 0 ]]; then
    current="$(readlink -f "$REGISTRY_DIR/current.sh" 2>/dev/null)"
    for f in "$REGISTRY_DIR"/*_env.sh; do
        [[ -e "$f" ]] || continue
        name="$(basename "$f")"
        name="${name%_env.sh}"
        if [[ -n "$current" && "$(readlink -f "$f")" == "$current" ]]; then
            echo "* $name (current)"
        else
            echo "  $name"
        fi
    done
    exit 0
fi

name="$1"
target="$REGISTRY_DIR/${name}_env.sh"
if [[ ! -e "$target" ]]; then
    echo "ERROR: no profile named '$name'" >&2
    echo "  expected: $target" >&2
    exit 1
fi

tmp="$REGISTRY_DIR/.current.sh.$$"
ln -s "$target" "$tmp" && mv -f "$tmp" "$REGISTRY_DIR/current.sh"

if [[ -d "$REGISTRY_DIR/bin/$name" ]]; then
    for tool in snpeff snpsift; do
        tmp="$REGISTRY_DIR/bin/.$tool.$$"
        ln -s "$name/$tool" "$tmp" && mv -f "$tmp" "$REGISTRY_DIR/bin/$tool"
    done
fi

echo "current profile: $name"
`))

type profileData struct {
	Name       string
	JavaHome   string
	SnpEffHome string
	Memory     string
	Generator  string
	Created    string
	Path       string
}

// renderProfileFile produces the profile file contents for p.
func renderProfileFile(p *Profile, path string) ([]byte, error) {
	var buf bytes.Buffer
	err := profileTemplate.Execute(&buf, profileData{
		Name:       p.Name,
		JavaHome:   p.JavaHome,
		SnpEffHome: p.SnpEffHome,
		Memory:     p.Memory,
		Generator:  p.Generator,
		Created:    p.CreatedAt.Format(time.RFC3339),
		Path:       path,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering profile file: %w", err)
	}
	return buf.Bytes(), nil
}

type shimData struct {
	Tool       string
	Jar        string
	Name       string
	JavaHome   string
	SnpEffHome string
	Memory     string
	Generator  string
}

// renderShim produces one wrapper executable for p.
func renderShim(p *Profile, tool, jar string) ([]byte, error) {
	var buf bytes.Buffer
	err := shimTemplate.Execute(&buf, shimData{
		Tool:       tool,
		Jar:        jar,
		Name:       p.Name,
		JavaHome:   p.JavaHome,
		SnpEffHome: p.SnpEffHome,
		Memory:     p.Memory,
		Generator:  p.Generator,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering %s shim: %w", tool, err)
	}
	return buf.Bytes(), nil
}

// renderSwitcher produces the switch_version.sh contents for a registry dir.
func renderSwitcher(dir, generator string) ([]byte, error) {
	var buf bytes.Buffer
	if err := switcherTemplate.Execute(&buf, struct{ Dir, Generator string }{dir, generator}); err != nil {
		return nil, fmt.Errorf("rendering switcher: %w", err)
	}
	return buf.Bytes(), nil
}

// writeFileAtomic writes data to a temp file in path's directory and
// renames it into place, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// replaceSymlink atomically repoints link at target via a temporary link
// and rename, so there is no window where the link is missing.
func replaceSymlink(target, link string) error {
	tmp := fmt.Sprintf("%s.tmp%d", link, os.Getpid())
	os.Remove(tmp)
	if err := os.Symlink(target, tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, link); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

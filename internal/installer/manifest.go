// Package installer provisions the toolchain on the shared filesystem: the
// Java runtime, the snpEff distribution, auxiliary Python packages, and the
// VADR environment. Steps are sequential and independently idempotent; a
// failed download is fatal for the run and is never retried.
package installer

import (
	_ "embed"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed manifest.yaml
var embeddedManifest []byte

//go:embed manifest.schema.json
var manifestSchema string

// Manifest pins the tool versions and download locations for one install
// run. The embedded copy is the lab default; an override file can replace
// it wholesale.
type Manifest struct {
	Java           ArchiveSpec `yaml:"java"`
	SnpEff         ArchiveSpec `yaml:"snpeff"`
	PythonPackages []string    `yaml:"python_packages"`
	Vadr           VadrSpec    `yaml:"vadr"`
}

// ArchiveSpec is a downloadable tool archive.
type ArchiveSpec struct {
	Version string `yaml:"version"`
	URL     string `yaml:"url"`
}

// VadrSpec describes the conda package for the VADR environment.
type VadrSpec struct {
	Package    string `yaml:"package"`
	Channel    string `yaml:"channel"`
	MinVersion string `yaml:"min_version"`
}

// LoadManifest parses and schema-validates manifest YAML.
func LoadManifest(data []byte) (*Manifest, error) {
	if err := validateManifest(data); err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "decoding manifest")
	}
	return &m, nil
}

// DefaultManifest returns the embedded manifest.
func DefaultManifest() (*Manifest, error) {
	return LoadManifest(embeddedManifest)
}

// LoadManifestFile reads a manifest override from disk.
func LoadManifestFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest %s", path)
	}
	return LoadManifest(data)
}

// validateManifest checks manifest YAML against the embedded JSON schema
// before any field is trusted.
func validateManifest(data []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("manifest.schema.json", strings.NewReader(manifestSchema)); err != nil {
		return errors.Wrap(err, "loading manifest schema")
	}
	schema, err := compiler.Compile("manifest.schema.json")
	if err != nil {
		return errors.Wrap(err, "compiling manifest schema")
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(err, "parsing manifest")
	}
	if err := schema.Validate(doc); err != nil {
		return errors.Wrap(err, "manifest failed schema validation")
	}
	return nil
}

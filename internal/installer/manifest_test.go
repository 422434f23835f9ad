package installer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultManifestIsValid(t *testing.T) {
	m, err := DefaultManifest()
	require.NoError(t, err)
	assert.NotEmpty(t, m.Java.URL)
	assert.NotEmpty(t, m.SnpEff.Version)
	assert.Equal(t, "bioconda", m.Vadr.Channel)
	assert.Contains(t, m.PythonPackages, "pandas")
}

func TestLoadManifestRejectsMissingSections(t *testing.T) {
	_, err := LoadManifest([]byte(`
java:
  version: "17"
  url: "https://example.org/jdk.tar.gz"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation")
}

func TestLoadManifestRejectsUnknownFields(t *testing.T) {
	_, err := LoadManifest([]byte(`
java: {version: "17", url: "https://example.org/jdk.tar.gz"}
snpeff: {version: "5.2f", url: "https://example.org/snpEff.zip"}
vadr: {package: vadr, channel: bioconda}
surprise: true
`))
	require.Error(t, err)
}

func TestLoadManifestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
java: {version: "21", url: "https://example.org/jdk21.tar.gz"}
snpeff: {version: "5.3", url: "https://example.org/snpEff.zip"}
python_packages: [biopython]
vadr: {package: vadr, channel: bioconda, min_version: "1.6"}
`), 0o644))

	m, err := LoadManifestFile(path)
	require.NoError(t, err)
	assert.Equal(t, "21", m.Java.Version)
	assert.Equal(t, "1.6", m.Vadr.MinVersion)
}

func TestVadrModelDiscovery(t *testing.T) {
	envDir := t.TempDir()
	modelDir := filepath.Join(envDir, "share", "vadr-1.6.4", "vadr-models")
	require.NoError(t, os.MkdirAll(modelDir, 0o755))
	for _, name := range []string{"flavi.cm", "dengue.cm"} {
		require.NoError(t, os.WriteFile(filepath.Join(modelDir, name), []byte("INFERNAL"), 0o644))
	}

	n, err := CountVadrModels(envDir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	v, err := InstalledVadrVersion(envDir)
	require.NoError(t, err)
	assert.Equal(t, "1.6.4", v)
}

func TestResolveVadrModelDirReturnsConcretePath(t *testing.T) {
	envDir := t.TempDir()
	modelDir := filepath.Join(envDir, "share", "vadr-1.6.4", "vadr-models")
	require.NoError(t, os.MkdirAll(modelDir, 0o755))

	got, err := ResolveVadrModelDir(envDir)
	require.NoError(t, err)
	assert.Equal(t, modelDir, got)

	// The resolved path is handed to v-annotate.pl as --mdir with no shell
	// expansion, so it must be a real directory, not the version glob.
	assert.NotContains(t, got, "*")
	assert.DirExists(t, got)

	_, err = ResolveVadrModelDir(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no VADR model directory")
}

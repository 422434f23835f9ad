package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahlab/labctl/internal/registry"
)

func TestDefaultsDeriveFromBaseDir(t *testing.T) {
	s := Defaults()
	assert.Equal(t, DefaultBaseDir, s.BaseDir)
	assert.Equal(t, filepath.Join(DefaultBaseDir, "snpeff_configs"), s.RegistryDir)
	assert.Equal(t, filepath.Join(DefaultBaseDir, "envs", "vadr_env"), s.VadrEnvDir)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	v.Set("base_dir", "/srv/tools")
	v.Set("registry_dir", "/srv/tools/profiles")
	v.Set("micromamba", "/usr/local/bin/micromamba")

	s := FromViper(v)
	assert.Equal(t, "/srv/tools", s.BaseDir)
	assert.Equal(t, "/srv/tools/profiles", s.RegistryDir)
	assert.Equal(t, "/usr/local/bin/micromamba", s.Micromamba)
	// unset keys keep their base-derived defaults
	assert.Equal(t, "/srv/tools/envs/vadr_env", s.VadrEnvDir)
}

func TestEnvironmentBeatsConfigFile(t *testing.T) {
	t.Setenv(registry.EnvRegistryDir, "/scratch/alt_registry")
	t.Setenv(registry.EnvScratchDir, "/scratch/tmp")

	v := viper.New()
	v.Set("registry_dir", "/srv/tools/profiles")
	v.Set("scratch_dir", "/var/tmp")

	s := FromViper(v)
	require.Equal(t, "/scratch/alt_registry", s.RegistryDir)
	require.Equal(t, "/scratch/tmp", s.ScratchDir)
}

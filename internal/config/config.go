// Package config holds labctl's own settings: where the shared software
// tree lives, where the profile registry sits, and where scratch space is.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/sahlab/labctl/internal/registry"
)

// DefaultBaseDir is the shared software tree on the lab filesystem.
const DefaultBaseDir = "/ref/sahlab/software"

// Settings is a value object that flows through the commands.
type Settings struct {
	BaseDir     string `yaml:"base_dir"`
	RegistryDir string `yaml:"registry_dir"`
	ScratchDir  string `yaml:"scratch_dir"`
	Micromamba  string `yaml:"micromamba"`
	VadrEnvDir  string `yaml:"vadr_env"`
}

// Defaults returns settings rooted at the shared software tree.
func Defaults() Settings {
	return settingsForBase(DefaultBaseDir)
}

func settingsForBase(base string) Settings {
	return Settings{
		BaseDir:     base,
		RegistryDir: filepath.Join(base, "snpeff_configs"),
		ScratchDir:  os.TempDir(),
		Micromamba:  filepath.Join(base, "micromamba"),
		VadrEnvDir:  filepath.Join(base, "envs", "vadr_env"),
	}
}

// FromViper builds Settings from viper state, which root.go has already
// primed with config-file values and the documented environment overrides
// (SNPEFF_CONFIG_DIR for the registry, SCRATCH_DIR for scratch space).
func FromViper(v *viper.Viper) Settings {
	base := v.GetString("base_dir")
	if base == "" {
		base = DefaultBaseDir
	}
	s := settingsForBase(base)

	if dir := v.GetString("registry_dir"); dir != "" {
		s.RegistryDir = dir
	}
	if dir := os.Getenv(registry.EnvRegistryDir); dir != "" {
		s.RegistryDir = dir
	}
	if dir := v.GetString("scratch_dir"); dir != "" {
		s.ScratchDir = dir
	}
	if dir := os.Getenv(registry.EnvScratchDir); dir != "" {
		s.ScratchDir = dir
	}
	if bin := v.GetString("micromamba"); bin != "" {
		s.Micromamba = bin
	}
	if dir := v.GetString("vadr_env"); dir != "" {
		s.VadrEnvDir = dir
	}
	return s
}

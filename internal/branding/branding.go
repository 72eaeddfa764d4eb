// Package branding provides compile-time identity values for the CLI.
//
// Values live in branding.yaml next to this file and are baked into the
// binary with //go:embed.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName       string `yaml:"cli_name"`
	DisplayName   string `yaml:"display_name"`
	Description   string `yaml:"description"`
	HomeDir       string `yaml:"home_dir"`
	EnvPrefix     string `yaml:"env_prefix"`
	ExtensionSlug string `yaml:"extension_slug"`
}

func load() {
	once.Do(func() {
		// Set hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:       "salvage-tools",
			DisplayName:   "Salvage Search Tools",
			Description:   "Developer utilities for the Salvage Search browser extension",
			HomeDir:       ".salvage-tools",
			EnvPrefix:     "SALVAGE_TOOLS",
			ExtensionSlug: "salvage_search",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "salvage-tools").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".salvage-tools").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "SALVAGE_TOOLS").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// ExtensionSlug returns the file-name prefix used for release archives
// (e.g., "salvage_search").
func ExtensionSlug() string { load(); return defaults.ExtensionSlug }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("CONFIG") → "SALVAGE_TOOLS_CONFIG".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}

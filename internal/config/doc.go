// Package config manages user-level settings stored at ~/.salvage-tools/config.yaml.
// Every fixed path and constant used by the fetch-models and package commands
// has a default here; the settings file and SALVAGE_TOOLS_* environment
// variables override them, and command flags override both.
package config

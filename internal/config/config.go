package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/salvage-search/salvage-tools/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Keys understood by the CLI.
const (
	KeyFetchEndpoint    = "fetch.endpoint"
	KeyFetchMakes       = "fetch.makes"
	KeyFetchOutput      = "fetch.output"
	KeyFetchStartAt     = "fetch.start_at"
	KeyFetchRunAndDrive = "fetch.run_and_drive"
	KeyFetchUserAgent   = "fetch.user_agent"
	KeyFetchTimeout     = "fetch.timeout"
	KeyFetchRate        = "fetch.rate"
	KeyFetchAppend      = "fetch.append"

	KeyPackageSrc             = "package.src"
	KeyPackageDest            = "package.dest"
	KeyPackageVersionManifest = "package.version_manifest"
	KeyPackageTargets         = "package.targets"
)

// DefaultUserAgent is sent by the fetcher unless fetch.user_agent is set.
// The search endpoint rejects requests without a browser-like agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:92.0) Gecko/20100101 Firefox/92.0"

// usedFile is the config file chosen by the last Load; Set writes there.
var usedFile string

// Target is one browser package definition as stored under package.targets.
type Target struct {
	Name     string `mapstructure:"name"`
	Manifest string `mapstructure:"manifest"`
	Archive  string `mapstructure:"archive"`
}

// Dir returns the path to the config directory (~/.salvage-tools/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.salvage-tools/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the directory holding the active config file if it does
// not exist.
func EnsureDir() error {
	dir := filepath.Dir(ActiveFile())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

func setDefaults() {
	slug := branding.ExtensionSlug()

	viper.SetDefault(KeyFetchEndpoint, "https://iaai.com/AdvancedSearch/GetVehicleModels")
	viper.SetDefault(KeyFetchMakes, filepath.Join("src", "iaaiMakes.json"))
	viper.SetDefault(KeyFetchOutput, filepath.Join("src", "iaaiMakeModels.json"))
	viper.SetDefault(KeyFetchStartAt, "johndeere")
	viper.SetDefault(KeyFetchRunAndDrive, false)
	viper.SetDefault(KeyFetchUserAgent, DefaultUserAgent)
	viper.SetDefault(KeyFetchTimeout, 30*time.Second)
	viper.SetDefault(KeyFetchRate, 0.0)
	viper.SetDefault(KeyFetchAppend, false)

	viper.SetDefault(KeyPackageSrc, "src")
	viper.SetDefault(KeyPackageDest, "releases")
	viper.SetDefault(KeyPackageVersionManifest, "manifest-firefox.json")
	viper.SetDefault(KeyPackageTargets, []map[string]interface{}{
		{"name": "firefox", "manifest": "manifest-firefox.json", "archive": slug + "-{version}-fx.zip"},
		{"name": "chrome", "manifest": "manifest-chrome.json", "archive": slug + "-{version}-chrome.zip"},
	})
}

// Load initializes Viper with defaults, the config file and the environment.
// An empty path falls back to $SALVAGE_TOOLS_CONFIG and then the default
// file. A missing default file is not an error, but a missing explicit
// file is.
func Load(path string) error {
	setDefaults()

	if path == "" {
		path = os.Getenv(branding.EnvVar("CONFIG"))
	}
	configFile := path
	if configFile == "" {
		configFile = FilePath()
	}
	usedFile = configFile

	viper.SetConfigFile(configFile)
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && (errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound)) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", configFile, err)
	}
	return nil
}

// ActiveFile returns the config file selected by Load, or the default path
// when Load has not run.
func ActiveFile() string {
	if usedFile == "" {
		return FilePath()
	}
	return usedFile
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// GetBool returns a boolean config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat returns a floating point config value.
func GetFloat(key string) float64 {
	return viper.GetFloat64(key)
}

// GetDuration returns a duration config value ("30s", "1m").
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// Targets returns the configured package targets in declaration order.
func Targets() ([]Target, error) {
	var targets []Target
	if err := viper.UnmarshalKey(KeyPackageTargets, &targets); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", KeyPackageTargets, err)
	}
	return targets, nil
}

// Set writes a config key-value pair and saves the active config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := ActiveFile()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

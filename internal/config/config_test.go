package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Setenv("HOME", t.TempDir())

	if err := Load(""); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := Get(KeyFetchStartAt); got != "johndeere" {
		t.Errorf("%s = %q, want %q", KeyFetchStartAt, got, "johndeere")
	}
	if got := Get(KeyPackageDest); got != "releases" {
		t.Errorf("%s = %q, want %q", KeyPackageDest, got, "releases")
	}
	if got := GetDuration(KeyFetchTimeout); got != 30*time.Second {
		t.Errorf("%s = %v, want 30s", KeyFetchTimeout, got)
	}
	if GetBool(KeyFetchAppend) {
		t.Errorf("%s should default to false", KeyFetchAppend)
	}

	targets, err := Targets()
	if err != nil {
		t.Fatalf("Targets: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("len(targets) = %d, want 2", len(targets))
	}
	if targets[0].Name != "firefox" || targets[0].Archive != "salvage_search-{version}-fx.zip" {
		t.Errorf("targets[0] = %+v", targets[0])
	}
	if targets[1].Name != "chrome" || targets[1].Manifest != "manifest-chrome.json" {
		t.Errorf("targets[1] = %+v", targets[1])
	}
}

func TestLoadExplicitFile(t *testing.T) {
	viper.Reset()
	path := filepath.Join(t.TempDir(), "tools.yaml")
	content := "fetch:\n  start_at: \"\"\n  output: out/models.json\npackage:\n  dest: dist\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := Get(KeyFetchOutput); got != "out/models.json" {
		t.Errorf("%s = %q, want %q", KeyFetchOutput, got, "out/models.json")
	}
	if got := Get(KeyPackageDest); got != "dist" {
		t.Errorf("%s = %q, want %q", KeyPackageDest, got, "dist")
	}
	if got := Get(KeyFetchStartAt); got != "" {
		t.Errorf("%s = %q, want empty", KeyFetchStartAt, got)
	}
}

func TestLoadExplicitFileMissing(t *testing.T) {
	viper.Reset()
	if err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestEnvOverride(t *testing.T) {
	viper.Reset()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SALVAGE_TOOLS_FETCH_OUTPUT", "env.json")

	if err := Load(""); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := Get(KeyFetchOutput); got != "env.json" {
		t.Errorf("%s = %q, want %q", KeyFetchOutput, got, "env.json")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	viper.Reset()
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "env.yaml")
	if err := os.WriteFile(path, []byte("package:\n  dest: from-env\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SALVAGE_TOOLS_CONFIG", path)

	if err := Load(""); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := Get(KeyPackageDest); got != "from-env" {
		t.Errorf("%s = %q, want %q", KeyPackageDest, got, "from-env")
	}
	if got := ActiveFile(); got != path {
		t.Errorf("ActiveFile() = %q, want %q", got, path)
	}
}

func TestSetWritesLoadedFile(t *testing.T) {
	viper.Reset()
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(t.TempDir(), "tools.yaml")
	if err := os.WriteFile(path, []byte("fetch:\n  output: a.json\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := Set(KeyFetchOutput, "b.json"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	viper.Reset()
	if err := Load(path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := Get(KeyFetchOutput); got != "b.json" {
		t.Errorf("%s = %q after reload, want %q", KeyFetchOutput, got, "b.json")
	}
	if _, err := os.Stat(filepath.Join(home, ".salvage-tools", "config.yaml")); !os.IsNotExist(err) {
		t.Errorf("default config file should not be written, stat err = %v", err)
	}
}

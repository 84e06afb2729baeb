package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/rupestre-campos/pi-world-radio/internal/fetch"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Volume != DefaultVolume {
		t.Errorf("DefaultConfig().Volume = %d, want %d", cfg.Volume, DefaultVolume)
	}
	if cfg.Player != DefaultPlayer {
		t.Errorf("DefaultConfig().Player = %q, want %q", cfg.Player, DefaultPlayer)
	}
	if cfg.CatalogMaxAge != 24*time.Hour {
		t.Errorf("DefaultConfig().CatalogMaxAge = %v, want 24h", cfg.CatalogMaxAge)
	}
	if !cfg.HistoryEnabled {
		t.Error("DefaultConfig().HistoryEnabled = false, want true")
	}
	if cfg.Fetch.Attempts != 4 || cfg.Fetch.Backoff != time.Second {
		t.Errorf("DefaultConfig().Fetch = %+v", cfg.Fetch)
	}
}

func TestConfigSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	testCfg := DefaultConfig()
	testCfg.Volume = 85
	testCfg.Player = "native"
	testCfg.CatalogMaxAge = 6 * time.Hour
	testCfg.Fetch.Backoff = 250 * time.Millisecond

	if err := testCfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	configPath := filepath.Join(tmpDir, ConfigDir, ConfigFileName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatalf("Config file was not created at %s", configPath)
	}

	loadedCfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loadedCfg.Volume != 85 {
		t.Errorf("Load().Volume = %d, want 85", loadedCfg.Volume)
	}
	if loadedCfg.Player != "native" {
		t.Errorf("Load().Player = %q, want %q", loadedCfg.Player, "native")
	}
	if loadedCfg.CatalogMaxAge != 6*time.Hour {
		t.Errorf("Load().CatalogMaxAge = %v, want 6h", loadedCfg.CatalogMaxAge)
	}
	if loadedCfg.Fetch.Backoff != 250*time.Millisecond {
		t.Errorf("Load().Fetch.Backoff = %v, want 250ms", loadedCfg.Fetch.Backoff)
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Volume != DefaultVolume {
		t.Errorf("Load() with non-existent file returned Volume = %d, want %d", cfg.Volume, DefaultVolume)
	}
	if cfg.APIBase == "" || cfg.StreamBase == "" {
		t.Errorf("Load() left endpoints empty: %+v", cfg)
	}
}

func TestLoadPartialYAML(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	configDir := filepath.Join(tmpDir, ConfigDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	data := []byte("volume: 40\ncatalog_max_age: 2h\nfetch:\n  attempts: 2\n  backoff_mode: fixed\nstream_ext: .aac\n")
	if err := os.WriteFile(filepath.Join(configDir, ConfigFileName), data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Volume != 40 || cfg.CatalogMaxAge != 2*time.Hour {
		t.Errorf("Load() = volume %d, max age %v", cfg.Volume, cfg.CatalogMaxAge)
	}
	if cfg.Fetch.Attempts != 2 || cfg.Fetch.BackoffMode != "fixed" {
		t.Errorf("Load().Fetch = %+v", cfg.Fetch)
	}
	if cfg.Fetch.ReadTimeout != fetch.DefaultReadTimeout {
		t.Errorf("Load().Fetch.ReadTimeout = %v, want default", cfg.Fetch.ReadTimeout)
	}
	if cfg.StreamExt != "aac" {
		t.Errorf("Load().StreamExt = %q, want aac", cfg.StreamExt)
	}
	if !cfg.HistoryEnabled {
		t.Error("unset history_enabled should keep the default")
	}
}

func TestVolumeValidation(t *testing.T) {
	tests := []struct {
		name           string
		inputVolume    int
		expectedVolume int
	}{
		{"valid volume 50", 50, 50},
		{"valid volume 0", 0, 0},
		{"valid volume 100", 100, 100},
		{"negative volume", -10, 0},
		{"volume over 100", 150, 100},
		{"volume way over 100", 1000, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())

			testCfg := DefaultConfig()
			testCfg.Volume = tt.inputVolume
			if err := testCfg.Save(); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			loadedCfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if loadedCfg.Volume != tt.expectedVolume {
				t.Errorf("Load().Volume = %d, want %d", loadedCfg.Volume, tt.expectedVolume)
			}
		})
	}
}

func TestThemeDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, _ := Load()

	if cfg.Theme.Background != "#1a1b25" {
		t.Errorf("Theme.Background = %q, want %q", cfg.Theme.Background, "#1a1b25")
	}
	if cfg.Theme.Highlight != "#ff9d65" {
		t.Errorf("Theme.Highlight = %q, want %q", cfg.Theme.Highlight, "#ff9d65")
	}
}

func TestThemePersistence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	testCfg := DefaultConfig()
	testCfg.Theme = Theme{
		Background: "black",
		Foreground: "yellow",
		Borders:    "blue",
		Highlight:  "red",
	}
	if err := testCfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loadedCfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loadedCfg.Theme.Background != "black" || loadedCfg.Theme.Foreground != "yellow" ||
		loadedCfg.Theme.Borders != "blue" || loadedCfg.Theme.Highlight != "red" {
		t.Errorf("Load().Theme = %+v", loadedCfg.Theme)
	}
}

func TestGetColor(t *testing.T) {
	for _, colorStr := range []string{"", "default"} {
		if result := GetColor(colorStr); result != 0 {
			t.Errorf("GetColor(%q) = %v, want ColorDefault (0)", colorStr, result)
		}
	}
	for _, colorStr := range []string{"white", "red", "#FF0000", "#ff9d65"} {
		if result := GetColor(colorStr); result == 0 {
			t.Errorf("GetColor(%q) = ColorDefault, want a color", colorStr)
		}
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	configDir := filepath.Join(tmpDir, ConfigDir)
	_ = os.MkdirAll(configDir, 0755)
	_ = os.WriteFile(filepath.Join(configDir, ConfigFileName), []byte("this is not: valid: yaml: ["), 0644)

	cfg, err := Load()
	if err == nil {
		t.Error("Load() should report invalid YAML")
	}
	if cfg.Volume != DefaultVolume {
		t.Errorf("Load() with invalid YAML returned Volume = %d, want default %d", cfg.Volume, DefaultVolume)
	}
}

func TestGetConfigPath(t *testing.T) {
	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if !filepath.IsAbs(path) {
		t.Errorf("GetConfigPath() = %q, want absolute path", path)
	}
}

func TestPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		name    string
		dataDir string
		want    string
	}{
		{"default", "", filepath.Join(home, DataDirName)},
		{"tilde", "~/radio", filepath.Join(home, "radio")},
		{"absolute", "/var/lib/piradio", "/var/lib/piradio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DataDir = tt.dataDir

			paths, err := cfg.Paths()
			if err != nil {
				t.Fatalf("Paths() error = %v", err)
			}
			if paths.Catalog != filepath.Join(tt.want, CatalogFileName) {
				t.Errorf("Catalog = %q", paths.Catalog)
			}
			if paths.History != filepath.Join(tt.want, HistoryFileName) {
				t.Errorf("History = %q", paths.History)
			}
			if paths.Favorites != filepath.Join(tt.want, FavoritesFileName) {
				t.Errorf("Favorites = %q", paths.Favorites)
			}
		})
	}
}

func TestFetchOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fetch.BackoffMode = "fixed"
	cfg.Fetch.RetryStatuses = []int{503}

	opts := cfg.FetchOptions()
	if opts.MaxAttempts != cfg.Fetch.Attempts || opts.BackoffMode != fetch.BackoffFixed {
		t.Errorf("FetchOptions() = %+v", opts)
	}
	if !slices.Equal(opts.RetryableStatus, []int{503}) {
		t.Errorf("RetryableStatus = %v", opts.RetryableStatus)
	}
	if opts.UserAgent == "" {
		t.Error("UserAgent should be set")
	}
}

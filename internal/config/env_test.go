package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("PIRADIO_TEST_STR", "value")
	t.Setenv("PIRADIO_TEST_INT", "42")
	t.Setenv("PIRADIO_TEST_BAD_INT", "forty")
	t.Setenv("PIRADIO_TEST_DUR", "90s")
	t.Setenv("PIRADIO_TEST_BOOL", "false")
	t.Setenv("PIRADIO_TEST_INTS", "502, 503")

	if got := GetEnv("PIRADIO_TEST_STR", "x"); got != "value" {
		t.Errorf("GetEnv() = %q", got)
	}
	if got := GetEnv("PIRADIO_TEST_UNSET", "x"); got != "x" {
		t.Errorf("GetEnv(unset) = %q, want fallback", got)
	}
	if got := GetEnvInt("PIRADIO_TEST_INT", 1); got != 42 {
		t.Errorf("GetEnvInt() = %d", got)
	}
	if got := GetEnvInt("PIRADIO_TEST_BAD_INT", 1); got != 1 {
		t.Errorf("GetEnvInt(invalid) = %d, want fallback", got)
	}
	if got := GetEnvDuration("PIRADIO_TEST_DUR", time.Second); got != 90*time.Second {
		t.Errorf("GetEnvDuration() = %v", got)
	}
	if got := GetEnvBool("PIRADIO_TEST_BOOL", true); got {
		t.Error("GetEnvBool() = true, want false")
	}
	if got := GetEnvInts("PIRADIO_TEST_INTS", nil); !slices.Equal(got, []int{502, 503}) {
		t.Errorf("GetEnvInts() = %v", got)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PIRADIO_VOLUME", "130")
	t.Setenv("PIRADIO_PLAYER", "Native")
	t.Setenv("PIRADIO_DATA_DIR", "/tmp/piradio-data")
	t.Setenv("PIRADIO_CATALOG_MAX_AGE", "1h")
	t.Setenv("PIRADIO_HISTORY_ENABLED", "0")
	t.Setenv("PIRADIO_FETCH_ATTEMPTS", "6")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Volume != 100 {
		t.Errorf("Volume = %d, want clamped 100", cfg.Volume)
	}
	if cfg.Player != "native" {
		t.Errorf("Player = %q, want native", cfg.Player)
	}
	if cfg.DataDir != "/tmp/piradio-data" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.CatalogMaxAge != time.Hour {
		t.Errorf("CatalogMaxAge = %v", cfg.CatalogMaxAge)
	}
	if cfg.HistoryEnabled {
		t.Error("HistoryEnabled = true, want false")
	}
	if cfg.Fetch.Attempts != 6 {
		t.Errorf("Fetch.Attempts = %d", cfg.Fetch.Attempts)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("PIRADIO_TEST_FROM_FILE=hello\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PIRADIO_TEST_FROM_FILE", "")
	os.Unsetenv("PIRADIO_TEST_FROM_FILE")

	if err := LoadEnv(envPath); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := os.Getenv("PIRADIO_TEST_FROM_FILE"); got != "hello" {
		t.Errorf("PIRADIO_TEST_FROM_FILE = %q, want hello", got)
	}
}

func TestLoadEnvMissingFile(t *testing.T) {
	if err := LoadEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("LoadEnv() with a missing file error = %v", err)
	}
}

func TestLoadEnvKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("PIRADIO_TEST_KEEP=file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PIRADIO_TEST_KEEP", "shell")

	if err := LoadEnv(envPath); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := os.Getenv("PIRADIO_TEST_KEEP"); got != "shell" {
		t.Errorf("PIRADIO_TEST_KEEP = %q, want the shell value", got)
	}
}

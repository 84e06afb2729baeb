package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rupestre-campos/pi-world-radio/internal/api"
	"github.com/rupestre-campos/pi-world-radio/internal/fetch"
	"github.com/rupestre-campos/pi-world-radio/internal/station"
	"gopkg.in/yaml.v3"
)

const (
	AppName        = "piradio"
	AppTagline     = "World radio from the terminal"
	AppDescription = "Browse radio.garden stations by country and city and play them"
	AppProjectURL  = "https://github.com/rupestre-campos/pi-world-radio"

	ConfigDir      = ".config/piradio"
	ConfigFileName = "config.yml"

	DataDirName       = ".piradio"
	CatalogFileName   = "radios.geojson"
	HistoryFileName   = "history.json"
	FavoritesFileName = "favorites.json"

	DefaultPlayer        = "mpv"
	DefaultMPVPath       = "mpv"
	DefaultVolume        = 70
	MinVolume            = 0
	MaxVolume            = 100
	DefaultCatalogMaxAge = 24 * time.Hour
)

// ClampVolume ensures volume is within the valid range [0, 100].
func ClampVolume(volume int) int {
	if volume < MinVolume {
		return MinVolume
	}
	if volume > MaxVolume {
		return MaxVolume
	}
	return volume
}

// AppVersion can be overridden at build time using ldflags:
// go build -ldflags "-X github.com/rupestre-campos/pi-world-radio/internal/config.AppVersion=1.0.0"
var AppVersion = "dev"

type Theme struct {
	Background      string `yaml:"background"`
	Foreground      string `yaml:"foreground"`
	Borders         string `yaml:"borders"`
	Highlight       string `yaml:"highlight"`
	FieldBackground string `yaml:"field_background"`
	Placeholder     string `yaml:"placeholder"`
	ModalBackground string `yaml:"modal_background"`
}

type Fetch struct {
	Attempts       int           `yaml:"attempts"`
	Backoff        time.Duration `yaml:"backoff"`
	BackoffMode    string        `yaml:"backoff_mode"`
	RetryStatuses  []int         `yaml:"retry_statuses"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
}

type Config struct {
	Volume         int           `yaml:"volume"`
	Player         string        `yaml:"player"`
	MPVPath        string        `yaml:"mpv_path"`
	DataDir        string        `yaml:"data_dir"`
	CatalogMaxAge  time.Duration `yaml:"catalog_max_age"`
	APIBase        string        `yaml:"api_base"`
	StreamBase     string        `yaml:"stream_base"`
	StreamExt      string        `yaml:"stream_ext"`
	HistoryEnabled bool          `yaml:"history_enabled"`
	Fetch          Fetch         `yaml:"fetch"`
	Theme          Theme         `yaml:"theme"`
}

func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(home, ConfigDir, ConfigFileName)
	return configPath, nil
}

// Load reads the config file, then applies PIRADIO_* environment overrides.
// A missing file yields the defaults.
func Load() (*Config, error) {
	cfg, err := loadFile()
	cfg.ApplyEnv()
	cfg.normalize()
	return cfg, err
}

func loadFile() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	defaults := DefaultConfig()

	c.Volume = ClampVolume(c.Volume)
	c.Player = strings.ToLower(strings.TrimSpace(c.Player))
	if c.Player == "" {
		c.Player = defaults.Player
	}
	if c.MPVPath == "" {
		c.MPVPath = defaults.MPVPath
	}
	if c.CatalogMaxAge <= 0 {
		c.CatalogMaxAge = defaults.CatalogMaxAge
	}
	if c.APIBase == "" {
		c.APIBase = defaults.APIBase
	}
	if c.StreamBase == "" {
		c.StreamBase = defaults.StreamBase
	}
	c.StreamExt = strings.TrimPrefix(c.StreamExt, ".")
	if c.StreamExt == "" {
		c.StreamExt = defaults.StreamExt
	}
	if c.Fetch.Attempts <= 0 {
		c.Fetch.Attempts = defaults.Fetch.Attempts
	}
	if c.Fetch.Backoff < 0 {
		c.Fetch.Backoff = 0
	}
	if c.Fetch.BackoffMode != string(fetch.BackoffFixed) {
		c.Fetch.BackoffMode = string(fetch.BackoffLinear)
	}
	if len(c.Fetch.RetryStatuses) == 0 {
		c.Fetch.RetryStatuses = defaults.Fetch.RetryStatuses
	}
	if c.Fetch.ConnectTimeout <= 0 {
		c.Fetch.ConnectTimeout = defaults.Fetch.ConnectTimeout
	}
	if c.Fetch.ReadTimeout <= 0 {
		c.Fetch.ReadTimeout = defaults.Fetch.ReadTimeout
	}
}

// Save writes the configuration to disk atomically using temp file + rename.
func (c *Config) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpFile, err := os.CreateTemp(configDir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, configPath); err != nil {
		return fmt.Errorf("failed to rename config file: %w", err)
	}

	tmpPath = "" // Prevent defer from removing the final file
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Volume:         DefaultVolume,
		Player:         DefaultPlayer,
		MPVPath:        DefaultMPVPath,
		DataDir:        "",
		CatalogMaxAge:  DefaultCatalogMaxAge,
		APIBase:        api.DefaultBaseURL,
		StreamBase:     station.DefaultStreamBase,
		StreamExt:      station.DefaultStreamExt,
		HistoryEnabled: true,
		Fetch: Fetch{
			Attempts:       fetch.DefaultMaxAttempts,
			Backoff:        fetch.DefaultBackoff,
			BackoffMode:    string(fetch.BackoffLinear),
			RetryStatuses:  append([]int(nil), fetch.DefaultRetryableStatus...),
			ConnectTimeout: fetch.DefaultConnectTimeout,
			ReadTimeout:    fetch.DefaultReadTimeout,
		},
		Theme: Theme{
			Background:      "#1a1b25",
			Foreground:      "#a3aacb",
			Borders:         "#40445b",
			Highlight:       "#ff9d65",
			FieldBackground: "#3a3d4f",
			Placeholder:     "#6b7089",
			ModalBackground: "#282a36",
		},
	}
}

// ResolveDataDir returns the directory holding the catalog snapshot and the
// journals. A leading ~ is expanded.
func (c *Config) ResolveDataDir() (string, error) {
	dir := c.DataDir
	if dir == "" {
		dir = filepath.Join("~", DataDirName)
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	return filepath.Abs(dir)
}

// Paths are the files kept in the data directory.
type Paths struct {
	Catalog   string
	History   string
	Favorites string
}

func (c *Config) Paths() (Paths, error) {
	dir, err := c.ResolveDataDir()
	if err != nil {
		return Paths{}, err
	}
	return Paths{
		Catalog:   filepath.Join(dir, CatalogFileName),
		History:   filepath.Join(dir, HistoryFileName),
		Favorites: filepath.Join(dir, FavoritesFileName),
	}, nil
}

// FetchOptions converts the fetch section into client options.
func (c *Config) FetchOptions() fetch.Options {
	return fetch.Options{
		MaxAttempts:     c.Fetch.Attempts,
		Backoff:         c.Fetch.Backoff,
		BackoffMode:     fetch.BackoffMode(c.Fetch.BackoffMode),
		RetryableStatus: c.Fetch.RetryStatuses,
		ConnectTimeout:  c.Fetch.ConnectTimeout,
		ReadTimeout:     c.Fetch.ReadTimeout,
		UserAgent:       AppName + "/" + AppVersion,
	}
}

func GetColor(colorStr string) tcell.Color {
	if colorStr == "" || colorStr == "default" {
		return tcell.ColorDefault
	}
	return tcell.GetColor(colorStr)
}

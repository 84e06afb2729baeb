package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PIRADIO_"

// LoadEnv reads .env files into the process environment without overriding
// variables that are already set. With no paths, ".env" is used. A missing
// file is not an error.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by key,
// or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvDuration parses values like "90s" or "24h".
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return fallback
}

func GetEnvBool(key string, fallback bool) bool {
	if s := os.Getenv(key); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return fallback
}

// GetEnvInts parses a comma separated list of integers.
func GetEnvInts(key string, fallback []int) []int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	var result []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return fallback
		}
		result = append(result, n)
	}
	return result
}

// ApplyEnv overrides fields from PIRADIO_* variables.
func (c *Config) ApplyEnv() {
	c.Volume = GetEnvInt(EnvPrefix+"VOLUME", c.Volume)
	c.Player = GetEnv(EnvPrefix+"PLAYER", c.Player)
	c.MPVPath = GetEnv(EnvPrefix+"MPV_PATH", c.MPVPath)
	c.DataDir = GetEnv(EnvPrefix+"DATA_DIR", c.DataDir)
	c.CatalogMaxAge = GetEnvDuration(EnvPrefix+"CATALOG_MAX_AGE", c.CatalogMaxAge)
	c.APIBase = GetEnv(EnvPrefix+"API_BASE", c.APIBase)
	c.StreamBase = GetEnv(EnvPrefix+"STREAM_BASE", c.StreamBase)
	c.StreamExt = GetEnv(EnvPrefix+"STREAM_EXT", c.StreamExt)
	c.HistoryEnabled = GetEnvBool(EnvPrefix+"HISTORY_ENABLED", c.HistoryEnabled)

	c.Fetch.Attempts = GetEnvInt(EnvPrefix+"FETCH_ATTEMPTS", c.Fetch.Attempts)
	c.Fetch.Backoff = GetEnvDuration(EnvPrefix+"FETCH_BACKOFF", c.Fetch.Backoff)
	c.Fetch.BackoffMode = GetEnv(EnvPrefix+"FETCH_BACKOFF_MODE", c.Fetch.BackoffMode)
	c.Fetch.RetryStatuses = GetEnvInts(EnvPrefix+"FETCH_RETRY_STATUSES", c.Fetch.RetryStatuses)
	c.Fetch.ConnectTimeout = GetEnvDuration(EnvPrefix+"CONNECT_TIMEOUT", c.Fetch.ConnectTimeout)
	c.Fetch.ReadTimeout = GetEnvDuration(EnvPrefix+"READ_TIMEOUT", c.Fetch.ReadTimeout)
}

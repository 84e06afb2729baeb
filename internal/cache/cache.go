// Package cache provides disk snapshots with an age-based freshness policy.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultExpiry is how long a snapshot is considered fresh.
	DefaultExpiry = 24 * time.Hour
	// AppName is used for the cache directory name.
	AppName = "piradio"
)

// File is a single snapshot on disk whose freshness is judged by its
// modification time.
type File struct {
	path   string
	expiry time.Duration
	now    func() time.Time
}

// NewFile creates a snapshot handle for path. A non-positive expiry means
// DefaultExpiry.
func NewFile(path string, expiry time.Duration) *File {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &File{
		path:   path,
		expiry: expiry,
		now:    time.Now,
	}
}

// GetCacheDir returns the platform-specific cache directory for the application.
func GetCacheDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}

	cacheDir := filepath.Join(userCacheDir, AppName)
	return cacheDir, nil
}

// Path returns the snapshot location.
func (f *File) Path() string {
	return f.path
}

// Expiry returns the freshness window.
func (f *File) Expiry() time.Duration {
	return f.expiry
}

// Age reports how old the snapshot is. ok is false when it does not exist.
func (f *File) Age() (age time.Duration, ok bool) {
	info, err := os.Stat(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Debug().Err(err).Str("file", f.path).Msg("Failed to stat snapshot")
		}
		return 0, false
	}
	if info.IsDir() {
		return 0, false
	}
	age = f.now().Sub(info.ModTime())
	if age < 0 {
		age = 0
	}
	return age, true
}

// Exists reports whether a snapshot is present, regardless of age.
func (f *File) Exists() bool {
	_, ok := f.Age()
	return ok
}

// Fresh reports whether a snapshot exists and is within the expiry window.
func (f *File) Fresh() bool {
	age, ok := f.Age()
	return ok && age <= f.expiry
}

// Read returns the snapshot contents.
func (f *File) Read() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}

// Write replaces the snapshot atomically using temp file + rename, so a crash
// never leaves a half-written file behind.
func (f *File) Write(data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+"-*.tmp")
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

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("failed to rename snapshot: %w", err)
	}

	tmpPath = ""
	log.Debug().Str("file", f.path).Int("bytes", len(data)).Msg("Snapshot written")
	return nil
}

// Package config resolves where rawtone keeps its files and how it logs.
//
// Values come from RAWTONE_* environment variables; the CLI overrides
// individual fields from its flags before calling EnsureDirs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/rawtone-mcp/internal/logging"
	"github.com/ironsheep/rawtone-mcp/internal/rawdecode"
	"github.com/ironsheep/rawtone-mcp/internal/store"
)

// Environment variables read by FromEnv.
const (
	EnvLogLevel      = "RAWTONE_LOG_LEVEL"
	EnvTempDir       = "RAWTONE_TEMP_DIR"
	EnvDataDir       = "RAWTONE_DATA_DIR"
	EnvDcraw         = "RAWTONE_DCRAW"
	EnvPreviewFormat = "RAWTONE_PREVIEW_FORMAT"
)

// AppName names the per-user directories.
const AppName = "rawtone"

// Defaults for settings without a directory.
const (
	DefaultPreviewFormat = "jpg"
	DefaultLogLevel      = "warn"
)

// Config holds resolved settings.
type Config struct {
	// TempDir receives preview and original artifacts.
	TempDir string

	// DataDir holds the library database and thumbnails.
	DataDir string

	// DcrawPath is the dcraw executable name or path.
	DcrawPath string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// PreviewFormat is the artifact extension, jpg or png.
	PreviewFormat string
}

// Default returns the built-in settings.
func Default() Config {
	dataDir, err := os.UserConfigDir()
	if err != nil {
		dataDir = os.TempDir()
	}
	return Config{
		TempDir:       filepath.Join(os.TempDir(), AppName),
		DataDir:       filepath.Join(dataDir, AppName),
		DcrawPath:     rawdecode.DefaultDcrawBinary,
		LogLevel:      DefaultLogLevel,
		PreviewFormat: DefaultPreviewFormat,
	}
}

// FromEnv returns Default with any RAWTONE_* overrides applied.
func FromEnv() Config {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) Config {
	cfg := Default()
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvTempDir, &cfg.TempDir)
	set(EnvDataDir, &cfg.DataDir)
	set(EnvDcraw, &cfg.DcrawPath)
	set(EnvLogLevel, &cfg.LogLevel)
	set(EnvPreviewFormat, &cfg.PreviewFormat)
	cfg.PreviewFormat = strings.TrimPrefix(strings.ToLower(cfg.PreviewFormat), ".")
	return cfg
}

// ThumbnailDir is where library thumbnails are written.
func (c Config) ThumbnailDir() string {
	return filepath.Join(c.DataDir, "thumbnails")
}

// DatabasePath is the library database file.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, store.DatabaseName)
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	switch c.PreviewFormat {
	case "jpg", "jpeg", "png":
	default:
		return fmt.Errorf("preview format %q: must be jpg or png", c.PreviewFormat)
	}
	if c.TempDir == "" || c.DataDir == "" {
		return fmt.Errorf("temp and data directories must be set")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// EnsureDirs creates the temp, data and thumbnail directories.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.TempDir, c.DataDir, c.ThumbnailDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

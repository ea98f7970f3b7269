package xdg

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dirs locates the per-user files of one application following the XDG
// base directory layout.
type Dirs struct {
	app        string
	configHome string
	cacheHome  string
}

func New(app string) *Dirs {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.TempDir()
	}
	return &Dirs{
		app:        app,
		configHome: envOr("XDG_CONFIG_HOME", filepath.Join(home, ".config")),
		cacheHome:  envOr("XDG_CACHE_HOME", filepath.Join(home, ".cache")),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" && filepath.IsAbs(v) {
		return v
	}
	return fallback
}

// ConfigFile is the optional .env file read on every start.
func (d *Dirs) ConfigFile() string {
	return filepath.Join(d.configHome, d.app, "config.env")
}

// DatasetCache returns the directory remote datasets are downloaded into,
// creating it when missing.
func (d *Dirs) DatasetCache() (string, error) {
	dir := filepath.Join(d.cacheHome, d.app, "datasets")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache dir %s: %w", dir, err)
	}
	return dir, nil
}

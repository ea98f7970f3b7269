package xdg_test

import (
	"path/filepath"
	"testing"

	"github.com/programme-lv/cardiorisk/internal/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs_EnvOverrides(t *testing.T) {
	cache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cache)
	t.Setenv("XDG_CONFIG_HOME", "/etc/test")

	dirs := xdg.New("cardiorisk")
	assert.Equal(t, "/etc/test/cardiorisk/config.env", dirs.ConfigFile())

	dir, err := dirs.DatasetCache()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cache, "cardiorisk", "datasets"), dir)
	assert.DirExists(t, dir)
}

func TestDirs_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/op")

	dirs := xdg.New("cardiorisk")
	assert.Equal(t, "/home/op/.config/cardiorisk/config.env", dirs.ConfigFile())
}

func TestDirs_RelativeOverrideIgnored(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "relative/dir")
	t.Setenv("HOME", "/home/op")

	assert.Equal(t, "/home/op/.config/cardiorisk/config.env", xdg.New("cardiorisk").ConfigFile())
}

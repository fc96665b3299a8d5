package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/fileops/internal/config"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir := filepath.Join(dir, "fileops")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(content), 0o644))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Defaults.PreserveTimes)
	assert.Nil(t, cfg.Defaults.CopyOptions)
	assert.Nil(t, cfg.Theme.Green)
}

func TestLoad_FullConfig(t *testing.T) {
	writeConfig(t, `
[defaults]
preserve_times = true
progress = false
copy_options = "fail-if-exists,no-buffering"
move_options = "replace-existing"
verify = "xxhash"
bwlimit = "100M"
path_format = "long"

[theme]
green = "#00ff00"
red = "#ff0000"
`)

	cfg, err := config.Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.Defaults.PreserveTimes)
	assert.True(t, *cfg.Defaults.PreserveTimes)

	require.NotNil(t, cfg.Defaults.Progress)
	assert.False(t, *cfg.Defaults.Progress)

	require.NotNil(t, cfg.Defaults.CopyOptions)
	assert.Equal(t, "fail-if-exists,no-buffering", *cfg.Defaults.CopyOptions)

	require.NotNil(t, cfg.Defaults.MoveOptions)
	assert.Equal(t, "replace-existing", *cfg.Defaults.MoveOptions)

	require.NotNil(t, cfg.Defaults.Verify)
	assert.Equal(t, "xxhash", *cfg.Defaults.Verify)

	require.NotNil(t, cfg.Defaults.BWLimit)
	assert.Equal(t, "100M", *cfg.Defaults.BWLimit)

	require.NotNil(t, cfg.Defaults.PathFormat)
	assert.Equal(t, "long", *cfg.Defaults.PathFormat)

	require.NotNil(t, cfg.Theme.Green)
	assert.Equal(t, "#00ff00", *cfg.Theme.Green)
	require.NotNil(t, cfg.Theme.Red)
	assert.Equal(t, "#ff0000", *cfg.Theme.Red)

	// Unset fields should remain nil.
	assert.Nil(t, cfg.Theme.Yellow)
	assert.Nil(t, cfg.Theme.Bright)
}

func TestLoad_PartialConfig(t *testing.T) {
	writeConfig(t, `
[theme]
bright = "#ffffff"
`)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Nil(t, cfg.Defaults.PreserveTimes)
	assert.Nil(t, cfg.Defaults.Verify)

	require.NotNil(t, cfg.Theme.Bright)
	assert.Equal(t, "#ffffff", *cfg.Theme.Bright)
}

func TestLoad_InvalidTOML(t *testing.T) {
	writeConfig(t, "invalid [[[")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Defaults.BWLimit)
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", filepath.FromSlash("/custom/config"))
	assert.Equal(t, filepath.Join(filepath.FromSlash("/custom/config"), "fileops", "config.toml"), config.Path())
}

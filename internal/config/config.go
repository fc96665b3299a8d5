package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the optional fileops configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	Theme    ThemeConfig    `toml:"theme"`
}

// DefaultsConfig holds persistent flag defaults. A nil field was not set.
type DefaultsConfig struct {
	PreserveTimes *bool   `toml:"preserve_times"`
	Progress      *bool   `toml:"progress"`
	CopyOptions   *string `toml:"copy_options"` // e.g. "fail-if-exists,no-buffering"
	MoveOptions   *string `toml:"move_options"` // e.g. "replace-existing,copy-allowed"
	Verify        *string `toml:"verify"`       // "blake3", "xxhash" or "none"
	BWLimit       *string `toml:"bwlimit"`
	PathFormat    *string `toml:"path_format"` // "relative", "full" or "long"
}

// ThemeConfig holds optional color overrides for the completion summary.
type ThemeConfig struct {
	Green  *string `toml:"green"`
	Red    *string `toml:"red"`
	Yellow *string `toml:"yellow"`
	Muted  *string `toml:"muted"`
	Bright *string `toml:"bright"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "fileops", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path with the same rules as Load.
func LoadFile(path string) (Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	return cfg, nil
}

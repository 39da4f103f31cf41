// Package config loads the scanner's on-disk TOML defaults, writing them out
// from an embedded default file on first run.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

//go:embed slacksweep.toml
var defaultConfigData []byte

// Defaults holds the scanner defaults loaded from the TOML config file.
// Command-line flags take precedence over every field here; the engine
// itself never reads this package once the final engine.Config has been
// assembled (see the "global mutable configuration" design note).
type Defaults struct {
	Device    string `toml:"device"`
	Patterns  string `toml:"patterns"`
	Threads   int    `toml:"threads"`
	DiskChunk int    `toml:"disk_chunk"`
	FileChunk int    `toml:"file_chunk"`
}

// path determines the config file location based on the operating system.
func path() (string, error) {
	var configDir string
	var err error

	switch runtime.GOOS {
	case "windows":
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "slacksweep")
	default:
		configDir, err = os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine user home directory: %w", err)
		}
	}

	return filepath.Join(configDir, ".slacksweep.toml"), nil
}

// Load reads the scanner defaults, creating the config file from the
// embedded default on first run.
func Load() (Defaults, error) {
	configPath, err := path()
	if err != nil {
		return Defaults{}, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configDir := filepath.Dir(configPath)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return Defaults{}, fmt.Errorf("create config directory %s: %w", configDir, err)
		}
		if err := os.WriteFile(configPath, defaultConfigData, 0644); err != nil {
			return Defaults{}, fmt.Errorf("create default config file at %s: %w", configPath, err)
		}
	}

	var d Defaults
	if _, err := toml.DecodeFile(configPath, &d); err != nil {
		return Defaults{}, fmt.Errorf("parse TOML config at %s: %w", configPath, err)
	}
	return d, nil
}

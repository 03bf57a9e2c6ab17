// Package config loads and saves rvm's TOML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is rvm's configuration: execution limits, the plugins to load and
// how strictly to enforce their handlers, and debugger preferences.
type Config struct {
	Execution struct {
		MemorySize   uint32 `toml:"memory_size"`
		MaxSteps     uint64 `toml:"max_steps"`
		DefaultEntry string `toml:"default_entry"`
		EnableTrace  bool   `toml:"enable_trace"`
	} `toml:"execution"`

	Plugins struct {
		Load                 []string `toml:"load"`
		FailOnMissingHandler bool     `toml:"fail_on_missing_handler"`
	} `toml:"plugins"`

	Debugger struct {
		HistorySize   int  `toml:"history_size"`
		AutoStartTUI  bool `toml:"auto_start_tui"`
		ShowRegisters bool `toml:"show_registers"`
	} `toml:"debugger"`
}

// DefaultConfig returns the configuration rvm falls back to when no config
// file is present.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Execution.MemorySize = 1 << 20
	cfg.Execution.MaxSteps = 10_000_000
	cfg.Execution.DefaultEntry = ""
	cfg.Execution.EnableTrace = false

	cfg.Plugins.Load = nil
	cfg.Plugins.FailOnMissingHandler = true

	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.AutoStartTUI = false
	cfg.Debugger.ShowRegisters = true

	return cfg
}

// GetConfigPath returns the platform-specific config file path:
// ~/.config/rvm/config.toml on Linux/macOS, %APPDATA%\rvm\config.toml on
// Windows.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "rvm")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "rvm")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file, falling back to
// DefaultConfig if it does not exist.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from path, falling back to DefaultConfig if
// it does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

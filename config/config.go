// Package config loads and saves pipesim's TOML configuration: simulator
// geometry (address space, cache sizes, latencies) and CLI defaults,
// mirroring the teacher's config package shape and library choice.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds every tunable the CLI and the pipeline core read at startup.
type Config struct {
	Execution struct {
		MaxCycles    uint64 `toml:"max_cycles"`
		StackBase    uint32 `toml:"stack_base"`
		DefaultEntry uint32 `toml:"default_entry"`
		EnableTrace  bool   `toml:"enable_trace"`
		EnableStats  bool   `toml:"enable_stats"`
	} `toml:"execution"`

	Cache struct {
		AddressSize   uint   `toml:"address_size"`
		L1IndexBits   uint   `toml:"l1_index_bits"`
		L2IndexBits   uint   `toml:"l2_index_bits"`
		L1Latency     uint32 `toml:"l1_latency"`
		L2Latency     uint32 `toml:"l2_latency"`
		RAMReadLatency  uint32 `toml:"ram_read_latency"`
		RAMWriteLatency uint32 `toml:"ram_write_latency"`
	} `toml:"cache"`

	Debugger struct {
		HistorySize   int  `toml:"history_size"`
		ShowRegisters bool `toml:"show_registers"`
	} `toml:"debugger"`

	Display struct {
		ColorOutput  bool   `toml:"color_output"`
		NumberFormat string `toml:"number_format"` // hex, dec, bin
	} `toml:"display"`
}

// DefaultConfig returns the configuration matching the default geometry
// implies: ADDRESS_SIZE=13, a small direct-mapped L1/L2, and latencies
// representative of a real two-level hierarchy.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Execution.MaxCycles = 1_000_000
	cfg.Execution.StackBase = 8191
	cfg.Execution.DefaultEntry = 0
	cfg.Execution.EnableTrace = false
	cfg.Execution.EnableStats = true

	cfg.Cache.AddressSize = 13
	cfg.Cache.L1IndexBits = 6
	cfg.Cache.L2IndexBits = 8
	cfg.Cache.L1Latency = 1
	cfg.Cache.L2Latency = 4
	cfg.Cache.RAMReadLatency = 20
	cfg.Cache.RAMWriteLatency = 20

	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.ShowRegisters = true

	cfg.Display.ColorOutput = true
	cfg.Display.NumberFormat = "hex"

	return cfg
}

// GetConfigPath returns the platform-specific config file path, creating
// its directory if necessary.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "pipesim")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "pipesim")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}
	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from path, falling back to defaults (merged
// over whatever the file supplies) if the file doesn't exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
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
		return fmt.Errorf("config: failed to create directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("config: failed to create file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("config: failed to encode: %w", err)
	}
	return nil
}

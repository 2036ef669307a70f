// Package config loads and saves this emitter's TOML-backed
// configuration, adapted from the teacher emulator's config package to
// the settings an ARM JIT back-end actually needs: code-buffer sizing,
// the ARMv6T2 feature flag, and the debugger/telemetry ambient tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is this repository's top-level configuration.
type Config struct {
	// Emitter controls the code-generation strategy itself.
	Emitter struct {
		// ARMv6T2 enables MOVW/MOVT immediate synthesis in place of
		// literal-pool loads wherever both are viable (spec.md §4.2,
		// §9 Open Question).
		ARMv6T2          bool `toml:"armv6t2"`
		CodeBufferSize   int  `toml:"code_buffer_size"`
		LiteralPoolReach int  `toml:"literal_pool_reach"`
	} `toml:"emitter"`

	// Debugger controls the terminal code-buffer inspector.
	Debugger struct {
		HistorySize     int  `toml:"history_size"`
		ShowRegisters   bool `toml:"show_registers"`
		ShowLiteralPool bool `toml:"show_literal_pool"`
		BytesPerLine    int  `toml:"bytes_per_line"`
	} `toml:"debugger"`

	// Telemetry controls the HTTP+WebSocket emission-event server.
	Telemetry struct {
		Enabled    bool   `toml:"enabled"`
		ListenAddr string `toml:"listen_addr"`
		BufferSize int    `toml:"buffer_size"`
	} `toml:"telemetry"`

	// Trace controls an optional log of every emitted instruction word,
	// adapted from the teacher's execution-trace settings to this
	// domain's emission trace.
	Trace struct {
		OutputFile   string `toml:"output_file"`
		IncludeWords bool   `toml:"include_words"`
		MaxEntries   int    `toml:"max_entries"`
	} `toml:"trace"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Emitter.ARMv6T2 = true
	cfg.Emitter.CodeBufferSize = 1 << 16
	cfg.Emitter.LiteralPoolReach = 4095

	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.ShowRegisters = true
	cfg.Debugger.ShowLiteralPool = true
	cfg.Debugger.BytesPerLine = 16

	cfg.Telemetry.Enabled = false
	cfg.Telemetry.ListenAddr = "127.0.0.1:8787"
	cfg.Telemetry.BufferSize = 256

	cfg.Trace.OutputFile = "emit-trace.log"
	cfg.Trace.IncludeWords = true
	cfg.Trace.MaxEntries = 100000

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "armjit")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "armjit")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// GetLogPath returns the platform-specific log directory path.
func GetLogPath() string {
	var logDir string

	switch runtime.GOOS {
	case "windows":
		logDir = os.Getenv("APPDATA")
		if logDir == "" {
			logDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		logDir = filepath.Join(logDir, "armjit", "logs")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "logs"
		}
		logDir = filepath.Join(homeDir, ".local", "share", "armjit", "logs")

	default:
		return "logs"
	}

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return "logs"
	}

	return logDir
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file.
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

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

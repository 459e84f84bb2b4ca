// Package config holds the agent and host-tool configuration models.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// AgentConfig configures the fixture agent. Exactly one of Device
// (serial) or Listen (TCP, for bench setups without hardware attached)
// selects the transport.
type AgentConfig struct {
	Device      string
	Baud        int
	Listen      string
	Version     int
	ImagePath   string
	Diagnostics DiagnosticsConfig
}

// DiagnosticsConfig enables the metrics endpoint when Addr is set.
type DiagnosticsConfig struct {
	Addr        string
	CorsOrigins []string
}

func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Baud:    9600,
		Version: 1,
	}
}

func ValidateAgentConfig(cfg AgentConfig) error {
	if cfg.Device == "" && cfg.Listen == "" {
		return fmt.Errorf("config: one of device or listen is required")
	}
	if cfg.Device != "" && cfg.Listen != "" {
		return fmt.Errorf("config: device and listen are mutually exclusive")
	}
	if cfg.Baud <= 0 {
		return fmt.Errorf("config: invalid baud %d", cfg.Baud)
	}
	if cfg.Version < 0 {
		return fmt.Errorf("config: negative version %d", cfg.Version)
	}
	return nil
}

// ToolConfig carries the host tool's connection defaults. Flags on the
// command line take precedence over values loaded here.
type ToolConfig struct {
	Target      string `toml:"target"`
	Baud        int    `toml:"baud"`
	ConnectBaud int    `toml:"connect_baud"`
}

func DefaultToolConfig() ToolConfig {
	return ToolConfig{
		Baud:        115200,
		ConnectBaud: 9600,
	}
}

// LoadToolConfig reads the tool config at path. A missing file is not
// an error; the defaults are returned.
func LoadToolConfig(path string) (ToolConfig, error) {
	cfg := DefaultToolConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return ToolConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return ToolConfig{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if cfg.Baud <= 0 || cfg.ConnectBaud <= 0 {
		return ToolConfig{}, fmt.Errorf("config: invalid baud in %s", path)
	}
	return cfg, nil
}

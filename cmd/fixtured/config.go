package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/fixturectl/internal/config"
)

type fileConfig struct {
	Device      string `toml:"device"`
	Baud        int    `toml:"baud"`
	Listen      string `toml:"listen"`
	Version     int    `toml:"version"`
	ImagePath   string `toml:"image_path"`
	Diagnostics struct {
		Addr        string   `toml:"addr"`
		CorsOrigins []string `toml:"cors_origins"`
	} `toml:"diagnostics"`
}

func loadAgentConfig(path string) (config.AgentConfig, error) {
	cfg := config.DefaultAgentConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config.AgentConfig{}, fmt.Errorf("load agent config: %w", err)
	}

	if meta.IsDefined("device") {
		cfg.Device = strings.TrimSpace(raw.Device)
	}

	if meta.IsDefined("baud") {
		cfg.Baud = raw.Baud
	}

	if meta.IsDefined("listen") {
		cfg.Listen = strings.TrimSpace(raw.Listen)
	}

	if meta.IsDefined("version") {
		cfg.Version = raw.Version
	}

	if meta.IsDefined("image_path") {
		cfg.ImagePath = strings.TrimSpace(raw.ImagePath)
	}

	if meta.IsDefined("diagnostics", "addr") {
		cfg.Diagnostics.Addr = strings.TrimSpace(raw.Diagnostics.Addr)
	}

	if meta.IsDefined("diagnostics", "cors_origins") {
		cfg.Diagnostics.CorsOrigins = normalizeOrigins(raw.Diagnostics.CorsOrigins)
	}

	if err := config.ValidateAgentConfig(cfg); err != nil {
		return config.AgentConfig{}, err
	}
	return cfg, nil
}

func normalizeOrigins(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

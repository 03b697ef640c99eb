package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	AllowAutoCreateStreams bool           `json:"allowAutoCreateStreams" yaml:"allowAutoCreateStreams"`
	DefaultNamespaceName   string         `json:"defaultNamespaceName" yaml:"defaultNamespaceName"`
	StreamDefaults         StreamDefaults `json:"streamDefaults" yaml:"streamDefaults"`
}

// StreamDefaults captures per-stream baseline limits.
type StreamDefaults struct {
	// FieldMaxBytes bounds a single field string on insert.
	FieldMaxBytes int `json:"fieldMaxBytes" yaml:"fieldMaxBytes"`
	// RangeMaxCount caps entries returned by one range call when the caller
	// asks for no limit.
	RangeMaxCount int `json:"rangeMaxCount" yaml:"rangeMaxCount"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		AllowAutoCreateStreams: true,
		DefaultNamespaceName:   "default",
		StreamDefaults: StreamDefaults{
			FieldMaxBytes: 1 << 20,
			RangeMaxCount: 10000,
		},
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If path
// is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

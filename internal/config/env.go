package config

import (
	"os"
	"strconv"
)

// FromEnv overlays FLUME_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("FLUME_ALLOW_AUTO_CREATE_STREAMS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AllowAutoCreateStreams = b
		}
	}
	if v := os.Getenv("FLUME_DEFAULT_NAMESPACE_NAME"); v != "" {
		cfg.DefaultNamespaceName = v
	}
	if v := os.Getenv("FLUME_STREAM_FIELD_MAX_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.StreamDefaults.FieldMaxBytes = n
		}
	}
	if v := os.Getenv("FLUME_STREAM_RANGE_MAX_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.StreamDefaults.RangeMaxCount = n
		}
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if !cfg.AllowAutoCreateStreams {
		t.Fatalf("default allow auto create should be true")
	}
	if cfg.DefaultNamespaceName != "default" {
		t.Fatalf("default ns name")
	}
	if cfg.StreamDefaults.RangeMaxCount != 10000 {
		t.Fatalf("range max count default")
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "flume.json")
	data := []byte(`{"allowAutoCreateStreams":false,"defaultNamespaceName":"prod","streamDefaults":{"fieldMaxBytes":2048,"rangeMaxCount":50}}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AllowAutoCreateStreams {
		t.Fatalf("expected false")
	}
	if cfg.DefaultNamespaceName != "prod" {
		t.Fatalf("expected prod")
	}
	if cfg.StreamDefaults.RangeMaxCount != 50 {
		t.Fatalf("expected 50")
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "flume.yaml")
	data := []byte("defaultNamespaceName: staging\nstreamDefaults:\n  fieldMaxBytes: 4096\n")
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultNamespaceName != "staging" {
		t.Fatalf("expected staging, got %q", cfg.DefaultNamespaceName)
	}
	if cfg.StreamDefaults.FieldMaxBytes != 4096 {
		t.Fatalf("expected 4096")
	}
	// Untouched keys keep their defaults.
	if cfg.StreamDefaults.RangeMaxCount != 10000 {
		t.Fatalf("expected default range max count")
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	os.Setenv("FLUME_ALLOW_AUTO_CREATE_STREAMS", "false")
	os.Setenv("FLUME_DEFAULT_NAMESPACE_NAME", "staging")
	os.Setenv("FLUME_STREAM_RANGE_MAX_COUNT", "24")
	t.Cleanup(func() {
		os.Unsetenv("FLUME_ALLOW_AUTO_CREATE_STREAMS")
		os.Unsetenv("FLUME_DEFAULT_NAMESPACE_NAME")
		os.Unsetenv("FLUME_STREAM_RANGE_MAX_COUNT")
	})
	FromEnv(&cfg)
	if cfg.AllowAutoCreateStreams {
		t.Fatalf("env override bool")
	}
	if cfg.DefaultNamespaceName != "staging" {
		t.Fatalf("env override name")
	}
	if cfg.StreamDefaults.RangeMaxCount != 24 {
		t.Fatalf("env override range max count")
	}
}

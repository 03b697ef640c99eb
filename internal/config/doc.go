// Package config provides loading and environment overlay for Flume runtime
// configuration. It exposes a Default() baseline, JSON/YAML file loading, and
// a FLUME_* env overlay.
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/flume.yaml"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
package config

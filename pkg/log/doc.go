// Package log provides Flume's structured logging facade.
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context, backed by the standard library's slog
// text and JSON handlers. Components receive a Logger tagged via
// log.Component and never construct their own global state.
//
//	l := log.NewLogger(log.WithLevel(log.InfoLevel), log.WithFormat(log.FormatText))
//	l = l.With(log.Component("streams"), log.Str("ns", "default"))
//	l.Info("stream opened", log.Str("name", "orders"))
//
// ApplyConfig builds a logger from a declarative Config (level and format
// strings, typically env-sourced). RedirectStdLog routes standard library
// logging (used by Pebble) through a Logger.
package log

// Package log wraps [log/slog] with a trace level, attribute-only logging
// methods and an optional colorized handler.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("project loaded", slog.Int("files", 12))
//	logger.Error("rename failed", slog.Any("error", err))
//
// The zero [Logger] discards everything. Library types such as a parsed
// tree hold a Logger field and only log once the caller supplies one.
//
// # Configuration
//
// Options are applied when the logger is created. A configuration is a
// value, so [Logger.Wrap] derives a new logger without affecting the
// original:
//
//	verbose := logger.Wrap(log.WithLevel(log.LevelTrace), log.WithCaller(true))
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug] and is used for per-node events
// such as cache hits and reference resolution. Level names parse
// case-insensitively with [ParseLevel], including offsets like "info+2".
//
// # Output
//
// [FormatText] (default) and [FormatJSON] select the record layout. With
// [WithPretty] enabled, text records are written on one colorized line
// and JSON records as an indented object. Colors are dropped when the
// output is not a terminal.
//
// Timestamps use [WithTimeLayout], which accepts layout names such as
// "RFC3339" or "Kitchen", short names "ms" and "us", a literal [time]
// layout, or "none".
//
// # Package Logger
//
// The package-level functions write through [Default], which logs to
// standard error until reconfigured with [Config].
package log

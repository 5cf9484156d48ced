// Copyright (C) 2025 The labellint authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides structured logging for labellint components.
//
// Logs go to stderr by default, following Unix CLI conventions: stdout is
// reserved for reports and machine-readable output. The implementation is a
// thin layer over the standard library's slog package.
//
// Basic usage:
//
//	logger := logging.Default()
//	logger.Info("scan started", "path", path)
//	logger.Error("scan failed", "error", err)
//
// Quiet mode (used by `--quiet` and by tests that assert on output):
//
//	logger := logging.New(logging.Config{Quiet: true})
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Level represents log severity, ordered Debug < Info < Warn < Error.
// Setting a minimum level filters out everything below it.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns "DEBUG", "INFO", "WARN" or "ERROR".
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config configures Logger behavior. The zero value logs Info and above to
// stderr in text format.
type Config struct {
	// Level is the minimum level to emit. Default LevelInfo.
	Level Level

	// Service is attached to every entry as the "service" attribute.
	// Default "" (no attribute).
	Service string

	// JSON switches output to machine-parseable JSON objects.
	// Default false (human-readable text).
	JSON bool

	// Quiet discards all output. Takes precedence over Output.
	Quiet bool

	// Output overrides the destination. Default os.Stderr.
	Output io.Writer
}

// Logger is a structured logger. It is safe for concurrent use.
type Logger struct {
	slog *slog.Logger
}

// New creates a Logger from config.
func New(config Config) *Logger {
	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	if config.Quiet {
		out = io.Discard
	}

	opts := &slog.HandlerOptions{Level: config.Level.toSlogLevel()}
	var handler slog.Handler
	if config.JSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	if config.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", config.Service)})
	}

	return &Logger{slog: slog.New(handler)}
}

// Default returns an Info-level text logger writing to stderr with the
// "labellint" service attribute.
func Default() *Logger {
	return New(Config{Level: LevelInfo, Service: "labellint"})
}

// Nop returns a logger that discards everything. Handy as a library
// default so callers never need nil checks.
func Nop() *Logger {
	return New(Config{Quiet: true})
}

// Debug logs at Debug level with alternating key-value attributes.
func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }

// Info logs at Info level.
func (l *Logger) Info(msg string, args ...any) { l.slog.Info(msg, args...) }

// Warn logs at Warn level.
func (l *Logger) Warn(msg string, args ...any) { l.slog.Warn(msg, args...) }

// Error logs at Error level.
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// With returns a child logger carrying additional attributes. The parent
// is not modified.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}

// Slog exposes the underlying slog.Logger for features this wrapper does
// not surface.
func (l *Logger) Slog() *slog.Logger { return l.slog }

// Copyright Ollama Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging wraps slog with the gateway's level mapping and a
// defense-in-depth redactor that scrubs secret-shaped strings (API keys,
// bearer tokens) from string attributes before they reach the output.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Config configures a Logger.
type Config struct {
	Level  string // DEBUG, INFO, WARNING, ERROR, CRITICAL
	Output io.Writer
}

// Logger wraps slog.Logger with redaction applied to string attributes.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing structured JSON records.
func New(cfg Config) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	handler := slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level:       levelFromString(cfg.Level),
		ReplaceAttr: redactingReplaceAttr,
	})

	return &Logger{Logger: slog.New(handler)}
}

func levelFromString(level string) slog.Level {
	switch level {
	case "DEBUG":
		return slog.LevelDebug
	case "WARNING":
		return slog.LevelWarn
	case "ERROR", "CRITICAL":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// redactingReplaceAttr scrubs values that look like secrets before they hit
// the handler, regardless of which key they were logged under. The gateway
// never logs prompts, messages, or response bodies by construction (I7); this
// is a second line of defense against an attribute added in the wrong place.
func redactingReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		a.Value = slog.StringValue(Redact(a.Value.String()))
	}
	return a
}

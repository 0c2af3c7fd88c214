// Package logging builds the zerolog logger shared by the switcher.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Params holds parameters for creating a logger.
type Params struct {
	Level   string    // zerolog level name, defaults to info
	File    string    // log file path; empty logs to Console
	Console io.Writer // defaults to os.Stderr
}

// New returns a logger and a close func for the underlying file.
// Stdout is never used: in host mode it carries native messaging frames.
func New(params Params) (zerolog.Logger, func() error, error) {
	level := zerolog.InfoLevel
	if params.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(params.Level))
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("log level: %w", err)
		}
		level = parsed
	}

	noop := func() error { return nil }

	if params.File != "" {
		if err := os.MkdirAll(filepath.Dir(params.File), 0o755); err != nil {
			return zerolog.Nop(), nil, err
		}
		f, err := os.OpenFile(params.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		logger := zerolog.New(f).Level(level).With().Timestamp().Logger()
		return logger, f.Close, nil
	}

	console := params.Console
	if console == nil {
		console = os.Stderr
	}
	writer := zerolog.ConsoleWriter{Out: console, TimeFormat: time.TimeOnly}
	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return logger, noop, nil
}

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// FromContext returns the logger stored in ctx, or a disabled logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

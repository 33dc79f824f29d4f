// Package logging provides structured logging for Daybook on top of log/slog.
//
// The Logger wraps slog with level/format parsing from configuration and
// automatic extraction of common request-scoped fields (request ID, user)
// from context, so handlers and background jobs log with consistent shape.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Format is the log output format.
type Format string

const (
	// FormatJSON outputs one JSON object per line.
	FormatJSON Format = "json"
	// FormatText outputs logfmt-style text.
	FormatText Format = "text"
)

// Config configures a Logger.
type Config struct {
	// Level is the minimum level: "debug", "info", "warn", "error".
	// Empty means info.
	Level string

	// Format is "json" or "text". Empty means json.
	Format string

	// AddSource includes file:line in every record.
	AddSource bool

	// Writer is the output destination, defaulting to os.Stdout.
	Writer io.Writer
}

// Logger is a thin structured logger over slog.
type Logger struct {
	slog  *slog.Logger
	level slog.Level
}

// New creates a Logger from configuration.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	format, err := parseFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid log format: %w", err)
	}

	writer := cfg.Writer
	if writer == nil {
		writer = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch format {
	case FormatText:
		handler = slog.NewTextHandler(writer, opts)
	default:
		handler = slog.NewJSONHandler(writer, opts)
	}

	return &Logger{
		slog:  slog.New(handler),
		level: level,
	}, nil
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Log(context.Background(), slog.LevelDebug, msg, args...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Log(context.Background(), slog.LevelInfo, msg, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Log(context.Background(), slog.LevelWarn, msg, args...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Log(context.Background(), slog.LevelError, msg, args...)
}

// DebugContext logs at debug level with fields extracted from ctx.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logCtx(ctx, slog.LevelDebug, msg, args...)
}

// InfoContext logs at info level with fields extracted from ctx.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logCtx(ctx, slog.LevelInfo, msg, args...)
}

// WarnContext logs at warn level with fields extracted from ctx.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logCtx(ctx, slog.LevelWarn, msg, args...)
}

// ErrorContext logs at error level with fields extracted from ctx.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logCtx(ctx, slog.LevelError, msg, args...)
}

func (l *Logger) logCtx(ctx context.Context, level slog.Level, msg string, args ...any) {
	if !l.slog.Enabled(ctx, level) {
		return
	}
	allArgs := append(extractContextFields(ctx), args...)
	l.slog.Log(ctx, level, msg, allArgs...)
}

// With returns a logger carrying additional fields on every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slog:  l.slog.With(args...),
		level: l.level,
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug", "DEBUG":
		return slog.LevelDebug, nil
	case "info", "INFO", "":
		return slog.LevelInfo, nil
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn, nil
	case "error", "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

func parseFormat(s string) (Format, error) {
	switch s {
	case "json", "JSON", "":
		return FormatJSON, nil
	case "text", "TEXT":
		return FormatText, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format: %s", s)
	}
}

package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// logLevel backs every handler InitLogger creates so SetLogLevel applies at runtime
var logLevel = new(slog.LevelVar)

// InitLogger initializes the application logger based on configuration
func InitLogger(cfg *LoggingConfig) (*slog.Logger, error) {
	logLevel.Set(ParseLogLevel(cfg.Level))

	// Configure log rotation
	var writer io.Writer
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		writer = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize, // megabytes
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge, // days
			Compress:   cfg.Compress,
		}
	} else {
		writer = os.Stderr
	}

	logger := slog.New(newHandler(writer, cfg))
	slog.SetDefault(logger)

	return logger, nil
}

func newHandler(w io.Writer, cfg *LoggingConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: logLevel}

	switch strings.ToLower(cfg.Format) {
	case "json":
		return slog.NewJSONHandler(w, opts)
	default:
		// only color console output, never files
		if cfg.Color && cfg.File == "" {
			return NewColoredTextHandler(w, opts)
		}
		return slog.NewTextHandler(w, opts)
	}
}

// SetLogLevel changes the level of every logger created by InitLogger
func SetLogLevel(level string) {
	logLevel.Set(ParseLogLevel(level))
}

// LogLevel returns the active level
func LogLevel() slog.Level {
	return logLevel.Level()
}

// NewColoredTextHandler returns a text handler whose level field is colored with ANSI codes
func NewColoredTextHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	return slog.NewTextHandler(&colorWriter{w: w}, opts)
}

var levelColors = map[string]string{
	"DEBUG": "\033[90m", // gray
	"INFO":  "\033[32m", // green
	"WARN":  "\033[33m", // yellow
	"ERROR": "\033[31m", // red
}

// colorWriter colors the level of each record. slog text handlers write one
// whole record per Write call.
type colorWriter struct {
	w io.Writer
}

func (c *colorWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(c.w, colorLevel(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// colorLevel wraps the value of the first level= field in its color
func colorLevel(line string) string {
	const key = slog.LevelKey + "="
	start := strings.Index(line, key)
	if start < 0 {
		return line
	}
	start += len(key)

	end := strings.IndexByte(line[start:], ' ')
	if end < 0 {
		end = len(line) - start
	}
	level := line[start : start+end]

	color, ok := levelColors[level]
	if !ok {
		return line
	}
	return line[:start] + color + level + "\033[0m" + line[start+end:]
}

// ParseLogLevel parses a log level string, defaulting to info
func ParseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

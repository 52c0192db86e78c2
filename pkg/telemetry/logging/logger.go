package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"relayhq/azrelay/pkg/config"
)

// LogFormat represents the output format for logs.
type LogFormat string

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON LogFormat = "json"
	// FormatText outputs logs in logfmt-style text.
	FormatText LogFormat = "text"
)

// Config contains configuration for New.
type Config struct {
	// Level is the minimum log level ("debug", "info", "warn", "error")
	Level string

	// Format is the output format ("json", "text")
	Format string

	// AddSource includes file and line number in logs
	AddSource bool

	// RedactPatterns contains custom redaction patterns
	RedactPatterns []config.RedactPattern

	// Secrets are literal values that must never appear in output, such
	// as the upstream API key
	Secrets []string

	// Writer is the output writer (defaults to os.Stdout)
	Writer io.Writer
}

// FromConfig converts the logging section of the service configuration.
func FromConfig(cfg config.LoggingConfig, secrets ...string) Config {
	return Config{
		Level:          cfg.Level,
		Format:         cfg.Format,
		AddSource:      cfg.AddSource,
		RedactPatterns: cfg.RedactPatterns,
		Secrets:        secrets,
	}
}

// New creates a *slog.Logger whose handler adds request and trace
// identifiers from the context and redacts secrets from every attribute.
func New(cfg Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
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

	var base slog.Handler
	switch format {
	case FormatText:
		base = slog.NewTextHandler(writer, opts)
	default:
		base = slog.NewJSONHandler(writer, opts)
	}

	redactor := NewRedactor(cfg.RedactPatterns)
	for _, secret := range cfg.Secrets {
		redactor.AddLiteral(secret)
	}

	return slog.New(NewHandler(base, redactor)), nil
}

// AddSecret makes every logger sharing logger's handler redact secret from
// now on. It reports false when logger was not created by New.
func AddSecret(logger *slog.Logger, secret string) bool {
	h, ok := logger.Handler().(*Handler)
	if !ok || h.redactor == nil {
		return false
	}
	h.redactor.AddLiteral(secret)
	return true
}

// Err returns an attribute for err under the conventional "error" key.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// ParseLevel parses a log level string into slog.Level. Matching is
// case-insensitive and "warning" is accepted for "warn".
func ParseLevel(levelStr string) (slog.Level, error) {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", levelStr)
	}
}

// parseFormat parses a log format string into LogFormat.
func parseFormat(formatStr string) (LogFormat, error) {
	switch strings.ToLower(formatStr) {
	case "json", "":
		return FormatJSON, nil
	case "text":
		return FormatText, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format: %s", formatStr)
	}
}

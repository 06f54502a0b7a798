// Package logging provides structured logging functionality for LocaleDrift
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/k0ns0l/localedrift/internal/errors"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat represents the log output format
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level      LogLevel  `yaml:"level" mapstructure:"level"`
	Format     LogFormat `yaml:"format" mapstructure:"format"`
	Output     string    `yaml:"output" mapstructure:"output"` // "stdout", "stderr", or file path
	TimeFormat string    `yaml:"time_format" mapstructure:"time_format"`
	AddSource  bool      `yaml:"add_source" mapstructure:"add_source"`
}

// DefaultLoggerConfig returns a default logger configuration. Logs go to
// stderr so that reports on stdout stay machine readable.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:      LogLevelWarn,
		Format:     LogFormatText,
		Output:     "stderr",
		TimeFormat: time.RFC3339,
		AddSource:  false,
	}
}

// ValidLevel reports whether level is one of the supported log levels.
func ValidLevel(level LogLevel) bool {
	switch level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	}
	return false
}

// Logger wraps slog.Logger and tracks the file handle when logging to a file
type Logger struct {
	*slog.Logger
	writer io.Writer
	file   *os.File
	config LoggerConfig
}

// NewLogger creates a logger writing to the destination named by config.Output
func NewLogger(config LoggerConfig) (*Logger, error) {
	var writer io.Writer
	var file *os.File

	switch config.Output {
	case "stdout":
		writer = os.Stdout
	case "stderr", "":
		writer = os.Stderr
	default:
		dir := filepath.Dir(config.Output)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		f, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writer = f
		file = f
	}

	logger := NewLoggerWithWriter(config, writer)
	logger.file = file
	return logger, nil
}

// NewLoggerWithWriter creates a logger that writes to w, ignoring config.Output
func NewLoggerWithWriter(config LoggerConfig, w io.Writer) *Logger {
	var level slog.Level
	switch config.Level {
	case LogLevelDebug:
		level = slog.LevelDebug
	case LogLevelInfo:
		level = slog.LevelInfo
	case LogLevelWarn:
		level = slog.LevelWarn
	case LogLevelError:
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	switch config.Format {
	case LogFormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
		config: config,
		writer: w,
	}
}

// Close closes the log file if the logger owns one
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// LogError logs a LocaleDrift error with appropriate context
func (l *Logger) LogError(ctx context.Context, err error, msg string, args ...interface{}) {
	if lde, ok := err.(*errors.LocaleDriftError); ok {
		attrs := []slog.Attr{
			slog.String("error_type", string(lde.Type)),
			slog.String("error_code", lde.Code),
			slog.String("severity", string(lde.Severity)),
			slog.Bool("recoverable", lde.Recoverable),
		}

		if lde.Guidance != "" {
			attrs = append(attrs, slog.String("guidance", lde.Guidance))
		}

		for key, value := range lde.Context {
			attrs = append(attrs, slog.Any(fmt.Sprintf("ctx_%s", key), value))
		}

		if lde.Cause != nil {
			attrs = append(attrs, slog.String("cause", lde.Cause.Error()))
		}

		l.LogAttrs(ctx, slog.LevelError, msg, attrs...)
		return
	}

	allArgs := append([]interface{}{"error", err}, args...)
	l.Error(msg, allArgs...)
}

// LogOperation logs the start of an operation
func (l *Logger) LogOperation(ctx context.Context, operation string, args ...interface{}) {
	l.Debug(fmt.Sprintf("Starting %s", operation), args...)
}

// LogOperationSuccess logs successful completion of an operation
func (l *Logger) LogOperationSuccess(ctx context.Context, operation string, duration time.Duration, args ...interface{}) {
	allArgs := append([]interface{}{"duration", duration}, args...)
	l.Info(fmt.Sprintf("Completed %s", operation), allArgs...)
}

// LogOperationFailure logs failed completion of an operation
func (l *Logger) LogOperationFailure(ctx context.Context, operation string, err error, duration time.Duration, args ...interface{}) {
	allArgs := append([]interface{}{"duration", duration, "error", err}, args...)
	l.Error(fmt.Sprintf("Failed %s", operation), allArgs...)
}

// WithComponent returns a logger with component context
func (l *Logger) WithComponent(component string) *Logger {
	return l.with("component", component)
}

// WithDocument returns a logger tagged with a locale document path
func (l *Logger) WithDocument(path string) *Logger {
	return l.with("document", path)
}

func (l *Logger) with(args ...interface{}) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
		config: l.config,
		writer: l.writer,
	}
}

// IsDebugEnabled reports whether debug records reach the handler
func (l *Logger) IsDebugEnabled() bool {
	return l.Enabled(context.Background(), slog.LevelDebug)
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return NewLoggerWithWriter(DefaultLoggerConfig(), io.Discard)
}

var globalLogger *Logger

// InitGlobalLogger initializes the global logger
func InitGlobalLogger(config LoggerConfig) error {
	logger, err := NewLogger(config)
	if err != nil {
		return err
	}
	globalLogger = logger
	return nil
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		logger, err := NewLogger(DefaultLoggerConfig())
		if err != nil {
			panic(fmt.Sprintf("Failed to create default logger: %v", err))
		}
		globalLogger = logger
	}
	return globalLogger
}

// CloseGlobalLogger closes the global logger
func CloseGlobalLogger() error {
	if globalLogger != nil {
		err := globalLogger.Close()
		globalLogger = nil
		return err
	}
	return nil
}

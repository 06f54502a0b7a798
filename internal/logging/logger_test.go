package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/k0ns0l/localedrift/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return NewLoggerWithWriter(LoggerConfig{Level: LogLevelDebug, Format: LogFormatText}, buf)
}

func TestDefaultLoggerConfig(t *testing.T) {
	config := DefaultLoggerConfig()

	assert.Equal(t, LogLevelWarn, config.Level)
	assert.Equal(t, LogFormatText, config.Format)
	assert.Equal(t, "stderr", config.Output)
	assert.Equal(t, time.RFC3339, config.TimeFormat)
	assert.False(t, config.AddSource)
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		config  LoggerConfig
		wantErr bool
	}{
		{
			name:   "default config",
			config: LoggerConfig{Level: LogLevelInfo, Format: LogFormatText, Output: "stderr"},
		},
		{
			name:   "json format",
			config: LoggerConfig{Level: LogLevelDebug, Format: LogFormatJSON, Output: "stdout"},
		},
		{
			name:   "file output",
			config: LoggerConfig{Level: LogLevelWarn, Format: LogFormatText, Output: filepath.Join(t.TempDir(), "test.log")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, logger)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, logger)

			logger.Info("Test log message")
			assert.NoError(t, logger.Close())
		})
	}
}

func TestNewLoggerFileCreation(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "subdir", "localedrift.log")

	logger, err := NewLogger(LoggerConfig{Level: LogLevelInfo, Format: LogFormatText, Output: logFile})
	require.NoError(t, err)
	defer logger.Close()

	assert.DirExists(t, filepath.Dir(logFile))

	logger.Info("test message")
	assert.FileExists(t, logFile)
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	assert.Contains(t, output, "level=DEBUG")
	assert.Contains(t, output, "level=INFO")
	assert.Contains(t, output, "level=WARN")
	assert.Contains(t, output, "level=ERROR")
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	docErr := errors.WrapError(fmt.Errorf("invalid character '}'"), errors.ErrorTypeDocument,
		errors.CodeDocumentMalformed, "locale file is not a valid structured document").
		WithSeverity(errors.SeverityHigh).
		WithGuidance("Fix the syntax error").
		WithContext("path", "es.json")

	logger.LogError(context.Background(), docErr, "Failed to load locale")

	output := buf.String()
	assert.Contains(t, output, "Failed to load locale")
	assert.Contains(t, output, "error_type=DOCUMENT")
	assert.Contains(t, output, "error_code=DOCUMENT_MALFORMED")
	assert.Contains(t, output, "severity=high")
	assert.Contains(t, output, "recoverable=false")
	assert.Contains(t, output, "guidance=\"Fix the syntax error\"")
	assert.Contains(t, output, "ctx_path=es.json")
	assert.Contains(t, output, "cause=\"invalid character '}'\"")
}

func TestLogErrorPlain(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.LogError(context.Background(), fmt.Errorf("boom"), "Something failed", "dir", "locales")

	output := buf.String()
	assert.Contains(t, output, "Something failed")
	assert.Contains(t, output, "error=boom")
	assert.Contains(t, output, "dir=locales")
}

func TestLogOperations(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)
	ctx := context.Background()

	logger.LogOperation(ctx, "locale audit", "dir", "locales")
	logger.LogOperationSuccess(ctx, "locale audit", 150*time.Millisecond, "pairs", 2)
	logger.LogOperationFailure(ctx, "locale audit", fmt.Errorf("missing reference"), time.Second)

	output := buf.String()
	assert.Contains(t, output, "Starting locale audit")
	assert.Contains(t, output, "Completed locale audit")
	assert.Contains(t, output, "pairs=2")
	assert.Contains(t, output, "Failed locale audit")
	assert.Contains(t, output, "error=\"missing reference\"")
}

func TestLoggerWithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.WithComponent("loader").Info("test message")
	assert.Contains(t, buf.String(), "component=loader")

	buf.Reset()
	logger.WithDocument("locales/en.json").Info("test message")
	assert.Contains(t, buf.String(), "document=locales/en.json")

	buf.Reset()
	logger.WithComponent("watch").WithDocument("locales/fr.json").Warn("test message")
	assert.Contains(t, buf.String(), "component=watch document=locales/fr.json")
}

func TestIsDebugEnabled(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  bool
	}{
		{LogLevelDebug, true},
		{LogLevelInfo, false},
		{LogLevelWarn, false},
		{LogLevelError, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			logger := NewLoggerWithWriter(LoggerConfig{Level: tt.level}, io.Discard)
			assert.Equal(t, tt.want, logger.IsDebugEnabled())
			assert.Equal(t, tt.want, logger.WithComponent("loader").IsDebugEnabled())
		})
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LoggerConfig{Level: LogLevelInfo, Format: LogFormatJSON}, &buf)

	logger.Info("test message", "key", "value", "number", 42)

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &logEntry))

	assert.Equal(t, "INFO", logEntry["level"])
	assert.Equal(t, "test message", logEntry["msg"])
	assert.Equal(t, "value", logEntry["key"])
	assert.Equal(t, float64(42), logEntry["number"])
}

func TestGlobalLogger(t *testing.T) {
	originalLogger := globalLogger
	defer func() {
		if globalLogger != nil {
			globalLogger.Close()
		}
		globalLogger = originalLogger
	}()

	assert.NotNil(t, GetGlobalLogger())

	err := InitGlobalLogger(LoggerConfig{Level: LogLevelDebug, Format: LogFormatJSON, Output: "stdout"})
	require.NoError(t, err)

	newLogger := GetGlobalLogger()
	assert.Equal(t, LogLevelDebug, newLogger.config.Level)
	assert.Equal(t, LogFormatJSON, newLogger.config.Format)

	assert.NoError(t, CloseGlobalLogger())
}

func BenchmarkLoggerInfo(b *testing.B) {
	logger := Discard()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		logger.Warn("benchmark message", "iteration", i)
	}
}

// Package logger provides structured leveled logging for the docx2md
// pipeline. Output goes to stderr by default so that converted markdown
// written to stdout stays clean; an optional log file can be added.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	// LevelDebug is for detailed per-pass diagnostics.
	LevelDebug Level = iota
	// LevelInfo is for general progress messages.
	LevelInfo
	// LevelWarn is for degradations (fallbacks, validation warnings).
	LevelWarn
	// LevelError is for failures.
	LevelError
)

// String returns the string representation of the log level.
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

// Field is a key-value pair attached to a log message.
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field.
func String(key, value string) Field { return Field{Key: key, Value: value} }

// Int creates an integer field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Bool creates a boolean field.
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

// Any creates a field holding an arbitrary value.
func Any(key string, value interface{}) Field { return Field{Key: key, Value: value} }

// Err creates an error field.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Logger is the logging interface used throughout the pipeline.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, err error, fields ...Field)
	SetLevel(level Level)
	Close() error
}

// Config holds logger settings.
type Config struct {
	// Level is the minimum level to emit.
	Level Level
	// LogFilePath, when non-empty, duplicates output into this file.
	LogFilePath string
	// Quiet suppresses console output entirely (file-only logging).
	Quiet bool
}

type defaultLogger struct {
	mu     sync.Mutex
	level  Level
	out    []io.Writer
	file   *os.File
	format string
}

// New creates a Logger from cfg. A nil cfg yields an info-level
// stderr-only logger.
func New(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = &Config{Level: LevelInfo}
	}
	l := &defaultLogger{
		level:  cfg.Level,
		format: "2006-01-02 15:04:05.000",
	}
	if !cfg.Quiet {
		l.out = append(l.out, os.Stderr)
	}
	if cfg.LogFilePath != "" {
		f, err := os.OpenFile(cfg.LogFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		l.file = f
		l.out = append(l.out, f)
	}
	return l, nil
}

func (l *defaultLogger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, nil, fields...) }
func (l *defaultLogger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, nil, fields...) }
func (l *defaultLogger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, nil, fields...) }

func (l *defaultLogger) Error(msg string, err error, fields ...Field) {
	l.log(LevelError, msg, err, fields...)
}

func (l *defaultLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *defaultLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *defaultLogger) log(level Level, msg string, err error, fields ...Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}

	var sb strings.Builder
	sb.WriteString(time.Now().Format(l.format))
	sb.WriteString(" [")
	sb.WriteString(level.String())
	sb.WriteString("] ")
	sb.WriteString(msg)
	if err != nil {
		sb.WriteString(" error=\"")
		sb.WriteString(err.Error())
		sb.WriteString("\"")
	}
	for _, f := range fields {
		sb.WriteString(" ")
		sb.WriteString(f.Key)
		sb.WriteString("=")
		sb.WriteString(fmt.Sprintf("%v", f.Value))
	}
	sb.WriteString("\n")

	line := []byte(sb.String())
	for _, w := range l.out {
		w.Write(line)
	}
}

// Global logger instance.
var (
	globalLogger Logger
	globalMu     sync.RWMutex
)

// Init installs the global logger used by package-level helpers.
func Init(cfg *Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger != nil {
		globalLogger.Close()
	}
	globalLogger = l
	return nil
}

// GetLogger returns the global logger, or a no-op logger when Init has not
// been called (keeps library use of the pipeline silent by default).
func GetLogger() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger == nil {
		return noop{}
	}
	return globalLogger
}

// Close closes the global logger.
func Close() error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger != nil {
		err := globalLogger.Close()
		globalLogger = nil
		return err
	}
	return nil
}

// Debug logs a debug message using the global logger.
func Debug(msg string, fields ...Field) { GetLogger().Debug(msg, fields...) }

// Info logs an informational message using the global logger.
func Info(msg string, fields ...Field) { GetLogger().Info(msg, fields...) }

// Warn logs a warning message using the global logger.
func Warn(msg string, fields ...Field) { GetLogger().Warn(msg, fields...) }

// Error logs an error message using the global logger.
func Error(msg string, err error, fields ...Field) { GetLogger().Error(msg, err, fields...) }

type noop struct{}

func (noop) Debug(string, ...Field)        {}
func (noop) Info(string, ...Field)         {}
func (noop) Warn(string, ...Field)         {}
func (noop) Error(string, error, ...Field) {}
func (noop) SetLevel(Level)                {}
func (noop) Close() error                  { return nil }

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Log levels supported by the logger
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// FileName is the name of the log file created inside the log directory.
const FileName = "netprophet.log"

// Logger provides structured logging with context propagation.
// It is safe for concurrent use; fan-out workers share one Logger.
type Logger struct {
	logger *slog.Logger
	sink   *sink // nil unless writing to a log file
}

// sink is the log file shared by a Logger and all of its children.
type sink struct {
	mu   sync.Mutex
	file *os.File
}

// NewLogger creates a new Logger that writes JSON-formatted logs to
// {dir}/netprophet.log. The file is appended to so that the log of a
// resumed run follows the log of the interrupted one.
//
// The level parameter controls which messages are logged:
//   - DEBUG: All messages, including every command line issued
//   - INFO: Stage lifecycle and batch progress
//   - WARN: Warn and Error messages
//   - ERROR: Only Error messages
//
// If dir is empty, logs will be written to stderr.
func NewLogger(dir string, level string) (*Logger, error) {
	if dir == "" {
		return NewLoggerTo(os.Stderr, level), nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := NewLoggerTo(file, level)
	l.sink = &sink{file: file}
	return l, nil
}

// NewLoggerTo creates a Logger writing JSON lines to w.
func NewLoggerTo(w io.Writer, level string) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slogLevel(ParseLevel(level)),
	})
	return &Logger{logger: slog.New(handler)}
}

func slogLevel(level string) slog.Level {
	switch level {
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

// WithRun returns a new Logger with the run ID added to all log entries.
func (l *Logger) WithRun(runID string) *Logger {
	return l.child(slog.String("run_id", runID))
}

// WithStage returns a new Logger with the stage number and name added to
// all log entries.
func (l *Logger) WithStage(id int, name string) *Logger {
	return l.child(slog.Int("stage", id), slog.String("stage_name", name))
}

// WithBatch returns a new Logger tagged with the index of a fan-out batch
// within its stage.
func (l *Logger) WithBatch(index int) *Logger {
	return l.child(slog.Int("batch", index))
}

// With returns a new Logger with arbitrary key-value attributes given as
// alternating arguments. Pairs whose key is not a string are dropped.
func (l *Logger) With(args ...any) *Logger {
	if len(args) == 0 {
		return l
	}
	attrs := make([]any, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			attrs = append(attrs, slog.Any(key, args[i+1]))
		}
	}
	return l.child(attrs...)
}

func (l *Logger) child(attrs ...any) *Logger {
	return &Logger{logger: l.logger.With(attrs...), sink: l.sink}
}

func (l *Logger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

// Close syncs and closes the log file shared with every child logger.
// It is a no-op for loggers writing to stderr or a caller-supplied writer.
func (l *Logger) Close() error {
	if l.sink == nil {
		return nil
	}
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if l.sink.file == nil {
		return nil
	}
	if err := l.sink.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	if err := l.sink.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	l.sink.file = nil
	return nil
}

// NopLogger returns a Logger that discards all log output.
func NopLogger() *Logger {
	return &Logger{logger: slog.New(slog.DiscardHandler)}
}

// ParseLevel normalizes a user-provided level string.
// Returns LevelInfo if the level string is not recognized.
func ParseLevel(level string) string {
	switch l := strings.ToUpper(level); l {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return l
	default:
		return LevelInfo
	}
}

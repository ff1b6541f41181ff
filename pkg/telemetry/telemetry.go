// Package telemetry appends pipeline events to a local JSONL log so runs
// can be inspected after the fact. Nothing leaves the machine.
package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

const logName = "telemetry.jsonl"

// Event is one line of the telemetry log.
type Event struct {
	Event     string                 `json:"event"`
	Timestamp string                 `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// Logger appends events to <dir>/telemetry.jsonl. A Logger that failed to
// open its sink is disabled and drops events silently.
type Logger struct {
	mu      sync.Mutex
	file    *os.File
	logger  *zap.Logger
	enabled bool
	path    string
}

// New creates a telemetry logger writing under dir. Open failures disable
// the logger rather than failing the pipeline.
func New(dir string, logger *zap.Logger) *Logger {
	path := filepath.Join(dir, logName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("Telemetry disabled: cannot create output directory", zap.Error(err))
		return &Logger{logger: logger}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger.Warn("Telemetry disabled: cannot open log", zap.String("path", path), zap.Error(err))
		return &Logger{logger: logger}
	}
	return &Logger{file: f, logger: logger, enabled: true, path: path}
}

// Enabled reports whether events are being recorded.
func (l *Logger) Enabled() bool {
	return l.enabled
}

// Path returns the log file location, empty when disabled.
func (l *Logger) Path() string {
	if !l.enabled {
		return ""
	}
	return l.path
}

// LogEvent appends one event line. Marshalling or write errors are logged
// and swallowed; telemetry must never fail a run.
func (l *Logger) LogEvent(event string, payload map[string]interface{}) {
	if !l.enabled {
		return
	}
	line, err := json.Marshal(Event{
		Event:     event,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		l.logger.Warn("Failed to marshal telemetry event", zap.String("event", event), zap.Error(err))
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.file.Write(append(line, '\n')); err != nil {
		l.logger.Warn("Failed to write telemetry event", zap.String("event", event), zap.Error(err))
	}
}

// Close releases the underlying file.
func (l *Logger) Close() error {
	if !l.enabled {
		return nil
	}
	return l.file.Close()
}

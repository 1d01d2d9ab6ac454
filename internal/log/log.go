// Package log provides structured logging for wheelhouse.
// Entries go to a file (stdout belongs to the TUI) as
// "2006-01-02T15:04:05 [LEVEL] [cat] msg key=value" lines, and every entry
// is republished through a pubsub broker so the debug overlay can tail the
// stream live.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rcastell/wheelhouse/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// Category groups related log messages.
type Category string

const (
	CatConfig    Category = "config"    // Configuration loading and validation
	CatUI        Category = "ui"        // UI component updates
	CatShell     Category = "shell"     // Composition root: selection, panels, overlays
	CatStore     Category = "store"     // Persistent key-value store
	CatMonitor   Category = "monitor"   // Health poll and liveness state
	CatTransport Category = "transport" // Push channel sessions
	CatDirectory Category = "directory" // Project directory service
	CatDocs      Category = "docs"      // Docs index and watcher
	CatCache     Category = "cache"     // Cache operations
	CatTracing   Category = "tracing"   // Trace provider lifecycle
)

// Categories returns every category in display order. The debug overlay
// cycles its category filter through this list.
func Categories() []Category {
	return []Category{
		CatConfig, CatUI, CatShell, CatStore, CatMonitor,
		CatTransport, CatDirectory, CatDocs, CatCache, CatTracing,
	}
}

// timeLayout prefixes every entry. The debug overlay assumes this shape
// when it classifies lines by level and category.
const timeLayout = "2006-01-02T15:04:05"

// defaultBufferSize bounds the in-memory entry buffer backing the debug
// overlay when Init is called with a non-positive size.
const defaultBufferSize = 1000

// Logger provides structured logging.
type Logger struct {
	mu        sync.Mutex
	file      *os.File
	writer    io.Writer
	minLevel  Level
	broker    *pubsub.Broker[string]
	buffer    []string
	bufferCap int
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init initializes the global logger. bufferSize caps the in-memory entry
// buffer served to the debug overlay; values <= 0 use the default.
// Returns a cleanup function that closes the log file.
func Init(path string, bufferSize int) (func(), error) {
	var initErr error
	once.Do(func() {
		defaultLogger, initErr = newLogger(path, bufferSize)
	})
	if initErr != nil {
		return nil, initErr
	}
	if defaultLogger == nil {
		return nil, fmt.Errorf("logger initialization failed or already attempted")
	}
	return func() {
		if defaultLogger != nil && defaultLogger.file != nil {
			_ = defaultLogger.file.Close()
		}
	}, nil
}

func newLogger(path string, bufferSize int) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //nolint:gosec // G304: path is user-controlled debug log path
	if err != nil {
		return nil, err
	}

	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	return &Logger{
		file:      f,
		writer:    f,
		minLevel:  LevelDebug,
		broker:    pubsub.NewBroker[string](),
		bufferCap: bufferSize,
	}, nil
}

// SetMinLevel drops entries below level. The shell raises this to LevelInfo
// at startup unless --debug is set.
func SetMinLevel(level Level) {
	if l := defaultLogger; l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	log(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	log(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	log(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	log(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	errVal := "<nil>"
	if err != nil {
		errVal = err.Error()
	}
	log(LevelError, cat, msg, append(fields, "error", errVal)...)
}

func log(level Level, cat Category, msg string, fields ...any) {
	l := defaultLogger
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.minLevel {
		return
	}

	entry := formatEntry(time.Now(), level, cat, msg, fields)

	if l.writer != nil {
		_, _ = l.writer.Write([]byte(entry))
	}

	l.buffer = append(l.buffer, entry)
	if len(l.buffer) > l.bufferCap {
		l.buffer = l.buffer[len(l.buffer)-l.bufferCap:]
	}

	if l.broker != nil {
		l.broker.Publish(pubsub.CreatedEvent, entry)
	}
}

// formatEntry renders one log line, newline included. Fields are appended
// as key=value pairs; an odd trailing key is recorded as key=<missing> so
// the mistake is visible in the output.
func formatEntry(ts time.Time, level Level, cat Category, msg string, fields []any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", ts.Format(timeLayout), level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	b.WriteByte('\n')
	return b.String()
}

// GetRecentLogs returns up to n of the most recent log entries, oldest first.
func GetRecentLogs(n int) []string {
	l := defaultLogger
	if l == nil || n <= 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	start := 0
	if len(l.buffer) > n {
		start = len(l.buffer) - n
	}
	out := make([]string, len(l.buffer)-start)
	copy(out, l.buffer[start:])
	return out
}

// ClearBuffer drops all buffered log entries. The log file is untouched.
func ClearBuffer() {
	if l := defaultLogger; l != nil {
		l.mu.Lock()
		l.buffer = nil
		l.mu.Unlock()
	}
}

// LogEvent is a pubsub event containing a formatted log entry.
type LogEvent = pubsub.Event[string]

// LogListener wraps a continuous listener for log events.
type LogListener = pubsub.ContinuousListener[string]

// NewListener creates a new log event listener.
// The subscription is released when ctx is cancelled.
func NewListener(ctx context.Context) *LogListener {
	l := defaultLogger
	if l == nil || l.broker == nil {
		return nil
	}
	return pubsub.NewContinuousListener(ctx, l.broker)
}

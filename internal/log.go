package internal

import (
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// LogLevel represents different logging verbosity levels
type LogLevel int32

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// Logger provides leveled logging with a bracketed component prefix
type Logger struct {
	level     *atomic.Int32
	component string
}

// NewLogger creates a new logger with the specified level
func NewLogger(level LogLevel) *Logger {
	l := &Logger{level: new(atomic.Int32)}
	l.level.Store(int32(level))
	return l
}

// NewDefaultLogger creates a logger from LOG_LEVEL, with LOG_DEBUG=true
// forcing debug output
func NewDefaultLogger() *Logger {
	l := NewLogger(LogLevelInfo)
	l.Configure(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_DEBUG") == "true")
	return l
}

// ParseLogLevel maps a LOG_LEVEL value to a level. Unknown values are info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LogLevelError
	case "WARN", "WARNING":
		return LogLevelWarn
	case "DEBUG":
		return LogLevelDebug
	}
	return LogLevelInfo
}

// Configure sets the level from loaded configuration. DefaultLogger is built
// before main reads .env, so entry points call this after config.Load.
func (l *Logger) Configure(level string, debug bool) {
	lv := ParseLogLevel(level)
	if debug {
		lv = LogLevelDebug
	}
	l.SetLevel(lv)
}

// Component returns a logger sharing this logger's level that tags every
// line with [name]
func (l *Logger) Component(name string) *Logger {
	return &Logger{level: l.level, component: name}
}

// SetLevel changes the level for this logger and every component derived from it
func (l *Logger) SetLevel(level LogLevel) {
	l.level.Store(int32(level))
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	return LogLevel(l.level.Load())
}

// DebugEnabled reports whether debug lines are printed
func (l *Logger) DebugEnabled() bool {
	return l.GetLevel() >= LogLevelDebug
}

func (l *Logger) printf(level LogLevel, tag, format string, args ...interface{}) {
	if l.GetLevel() < level {
		return
	}
	prefix := ""
	if l.component != "" {
		prefix = "[" + l.component + "] "
	}
	if tag != "" {
		prefix += tag + " "
	}
	log.Printf(prefix+format, args...)
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.printf(LogLevelError, "ERROR:", format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.printf(LogLevelWarn, "WARN:", format, args...)
}

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.printf(LogLevelInfo, "", format, args...)
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.printf(LogLevelDebug, "DEBUG:", format, args...)
}

// DefaultLogger is the process-wide logger
var DefaultLogger = NewDefaultLogger()

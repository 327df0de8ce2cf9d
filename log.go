package tagdb

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarning
	LogLevelError
	// LogLevelNone disables all logging
	LogLevelNone
)

// ParseLogLevel maps debug, info, warning, error and none to a LogLevel.
// An empty name is info.
func ParseLogLevel(name string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LogLevelDebug, nil
	case "", "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarning, nil
	case "error":
		return LogLevelError, nil
	case "none", "off":
		return LogLevelNone, nil
	}

	return LogLevelInfo, fmt.Errorf("Unknown log level %q", name)
}

// Logger writes leveled log lines
type Logger struct {
	debugLogger   *log.Logger
	infoLogger    *log.Logger
	warningLogger *log.Logger
	errorLogger   *log.Logger
	level         atomic.Int32
}

// NewLogger creates a logger writing to output, or stderr when output is nil
func NewLogger(level LogLevel, output io.Writer) *Logger {
	if output == nil {
		output = os.Stderr
	}

	l := &Logger{
		debugLogger:   log.New(output, "DEBUG: ", log.Ldate|log.Ltime),
		infoLogger:    log.New(output, "INFO: ", log.Ldate|log.Ltime),
		warningLogger: log.New(output, "WARNING: ", log.Ldate|log.Ltime),
		errorLogger:   log.New(output, "ERROR: ", log.Ldate|log.Ltime),
	}
	l.SetLevel(level)
	return l
}

// SetLevel is safe to call while other goroutines are logging
func (l *Logger) SetLevel(level LogLevel) {
	l.level.Store(int32(level))
}

func (l *Logger) Level() LogLevel {
	return LogLevel(l.level.Load())
}

func (l *Logger) Debug(format string, v ...interface{}) {
	if l.Level() <= LogLevelDebug {
		l.debugLogger.Printf(format, v...)
	}
}

func (l *Logger) Info(format string, v ...interface{}) {
	if l.Level() <= LogLevelInfo {
		l.infoLogger.Printf(format, v...)
	}
}

func (l *Logger) Warning(format string, v ...interface{}) {
	if l.Level() <= LogLevelWarning {
		l.warningLogger.Printf(format, v...)
	}
}

func (l *Logger) Error(format string, v ...interface{}) {
	if l.Level() <= LogLevelError {
		l.errorLogger.Printf(format, v...)
	}
}

// MessageLog is an append-only list of outcome messages. Entries are
// never removed.
type MessageLog struct {
	mu       sync.Mutex
	messages []string
	logger   *Logger
}

func newMessageLog(logger *Logger) *MessageLog {
	return &MessageLog{logger: logger}
}

// Info appends an outcome message
func (ml *MessageLog) Info(format string, v ...interface{}) {
	msg := ml.append(format, v...)
	if ml.logger != nil {
		ml.logger.Info("%s", msg)
	}
}

// Error appends a failure message
func (ml *MessageLog) Error(format string, v ...interface{}) {
	msg := ml.append(format, v...)
	if ml.logger != nil {
		ml.logger.Error("%s", msg)
	}
}

func (ml *MessageLog) append(format string, v ...interface{}) string {
	msg := fmt.Sprintf(format, v...)

	ml.mu.Lock()
	ml.messages = append(ml.messages, msg)
	ml.mu.Unlock()

	return msg
}

// Messages returns a copy of every message in append order
func (ml *MessageLog) Messages() []string {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	out := make([]string, len(ml.messages))
	copy(out, ml.messages)
	return out
}

func (ml *MessageLog) Len() int {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	return len(ml.messages)
}

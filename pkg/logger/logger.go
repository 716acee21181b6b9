package logger

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"convert-service/pkg/config"
)

// Logger wraps a logrus instance configured from service settings.
type Logger struct {
	entry *logrus.Logger
	out   io.Closer
}

var (
	globalMu sync.RWMutex
	global   = &Logger{entry: logrus.StandardLogger()}
)

// NewLogger builds a logger from the log section of the configuration.
func NewLogger(cfg *config.Config) *Logger {
	l := logrus.New()

	level := logrus.InfoLevel
	if cfg != nil {
		if parsed, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
			level = parsed
		}
	}
	l.SetLevel(level)

	if cfg != nil && cfg.Log.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	out := &Logger{entry: l}
	if cfg != nil && cfg.Log.Output != "" && cfg.Log.Output != "stdout" {
		if f, err := os.OpenFile(cfg.Log.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			l.SetOutput(f)
			out.out = f
		}
	}
	return out
}

// SetGlobalLogger installs the process-wide logger.
func SetGlobalLogger(l *Logger) {
	if l == nil {
		return
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	global = l
}

// Close releases the log output file if one was opened.
func (l *Logger) Close() {
	if l.out != nil {
		_ = l.out.Close()
	}
}

func get() *logrus.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global.entry
}

func Debugf(format string, args ...interface{}) { get().Debugf(format, args...) }
func Infof(format string, args ...interface{})  { get().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { get().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { get().Errorf(format, args...) }
func Fatal(msg string)                          { get().Fatal(msg) }

// Debug logs a message with structured fields.
func Debug(msg string, fields map[string]interface{}) {
	get().WithFields(logrus.Fields(fields)).Debug(msg)
}

// Info logs a message with structured fields.
func Info(msg string, fields map[string]interface{}) {
	get().WithFields(logrus.Fields(fields)).Info(msg)
}

// Warn logs a message with structured fields.
func Warn(msg string, fields map[string]interface{}) {
	get().WithFields(logrus.Fields(fields)).Warn(msg)
}

// Error logs a message with structured fields.
func Error(msg string, fields map[string]interface{}) {
	get().WithFields(logrus.Fields(fields)).Error(msg)
}

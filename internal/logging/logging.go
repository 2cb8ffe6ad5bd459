package logging

import (
	"bytes"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// appName prefixes every log line and names the debug log file.
const appName = "todo-mcp"

type AppLogger struct {
	logger *log.Logger
	debug  bool
}

// Options controls logger construction. The zero value is a production logger
// writing warnings and errors to stderr.
type Options struct {
	// Debug enables debug level, caller reporting and file output.
	Debug bool
	// Output overrides the destination. When nil, production logs go to stderr
	// and debug logs go to the state-dir log file.
	Output io.Writer
}

var (
	defaultLogger *AppLogger
	once          sync.Once
)

// GetDefault returns the default logger instance (singleton-like for convenience)
func GetDefault() *AppLogger {
	once.Do(func() {
		defaultLogger = NewAppLogger()
	})
	return defaultLogger
}

// SetDefault replaces the package-level logger, e.g. after config has been read.
func SetDefault(l *AppLogger) {
	once.Do(func() {})
	defaultLogger = l
}

// Debug logs through the default logger, for packages that have no logger
// of their own.
func Debug(msg string, keyvals ...interface{}) {
	GetDefault().Debug(msg, keyvals...)
}

// NewAppLogger builds a logger from the environment: DEBUG switches to debug mode.
func NewAppLogger() *AppLogger {
	return NewAppLoggerWithOptions(Options{Debug: os.Getenv("DEBUG") != ""})
}

// NewAppLoggerWithOptions builds a logger. Nothing is ever written to stdout:
// the MCP transport owns it.
func NewAppLoggerWithOptions(opts Options) *AppLogger {
	var logger *log.Logger

	if opts.Debug {
		out := opts.Output
		logPath := ""
		if out == nil {
			// Development: log to file, cleared on each run
			var err error
			logPath, err = xdg.StateFile(filepath.Join(appName, appName+".log"))
			if err != nil {
				panic(fmt.Sprintf("Failed to resolve debug log path: %v", err))
			}
			logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if err != nil {
				panic(fmt.Sprintf("Failed to create debug log file: %v", err))
			}
			out = logFile
		}

		logger = log.NewWithOptions(out, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
			Prefix:          appName,
		})
		logger.SetLevel(log.DebugLevel)

		if logPath != "" {
			logger.Info("Debug logging enabled", "log_file", logPath)
		}
	} else {
		out := opts.Output
		if out == nil {
			out = os.Stderr
		}
		// Production: warnings and errors to stderr only
		logger = log.NewWithOptions(out, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          appName,
		})
		logger.SetLevel(log.WarnLevel)
	}

	return &AppLogger{
		logger: logger,
		debug:  opts.Debug,
	}
}

// With returns a child logger that adds keyvals to every entry.
func (al *AppLogger) With(keyvals ...interface{}) *AppLogger {
	return &AppLogger{
		logger: al.logger.With(keyvals...),
		debug:  al.debug,
	}
}

// IsDebug reports whether debug logging is active.
func (al *AppLogger) IsDebug() bool {
	return al.debug
}

// StandardLog adapts the logger for libraries that take a *log.Logger.
// Lines are written at error level.
func (al *AppLogger) StandardLog() *stdlog.Logger {
	return al.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel})
}

// Log application events
func (al *AppLogger) Info(msg string, keyvals ...interface{}) {
	al.logger.Info(msg, keyvals...)
}

func (al *AppLogger) Warn(msg string, keyvals ...interface{}) {
	al.logger.Warn(msg, keyvals...)
}

func (al *AppLogger) Error(msg string, keyvals ...interface{}) {
	al.logger.Error(msg, keyvals...)
}

func (al *AppLogger) Debug(msg string, keyvals ...interface{}) {
	if al.debug {
		al.logger.Debug(msg, keyvals...)
	}
}

// Pretty print any object
func (al *AppLogger) DebugObject(name string, obj interface{}) {
	if al.debug {
		al.logger.Debug("Object dump", "name", name, "object", fmt.Sprintf("%+v", obj))
	}
}

// Log performance metrics
func (al *AppLogger) LogPerformance(operation string, start time.Time) {
	if al.debug {
		duration := time.Since(start)
		al.logger.Debug("Performance",
			"operation", operation,
			"duration", duration,
		)
	}
}

// Log state transitions, e.g. a todo moving between pending and completed
func (al *AppLogger) LogStateTransition(component, from, to string) {
	if al.debug {
		al.logger.Debug("State transition",
			"component", component,
			"from", from,
			"to", to,
		)
	}
}

// Log session actions (login, logout) for debugging
func (al *AppLogger) LogUserAction(action, context string) {
	if al.debug {
		al.logger.Debug("User action",
			"action", action,
			"context", context,
		)
	}
}

// Testing Helper - NewTestLogger creates a logger that writes to a buffer for testing
func NewTestLogger() (*AppLogger, *bytes.Buffer) {
	var buf bytes.Buffer

	logger := log.NewWithOptions(&buf, log.Options{
		ReportTimestamp: false, // Easier to test without timestamps
		ReportCaller:    false,
		Prefix:          "Test",
	})
	logger.SetLevel(log.DebugLevel)

	return &AppLogger{
		logger: logger,
		debug:  true,
	}, &buf
}

// Package logging provides the application-wide structured logger: a slog
// logger writing to the console and to weekly rotating files, plus an HTTP
// request logging middleware.
package logging

import (
	"log/slog"
	"os"
)

// LoggingService wraps the configured slog logger.
type LoggingService struct {
	Logger  *slog.Logger
	rotator *RotatingWriter
}

var DefaultLoggingService *LoggingService

// Init initializes the global logger instance writing to logDir.
func Init(logDir string, opts Options) error {
	logger, rotator, err := NewLogger(logDir, opts)
	if err != nil {
		return err
	}

	DefaultLoggingService = &LoggingService{Logger: logger, rotator: rotator}
	slog.SetDefault(logger)
	return nil
}

// Close flushes and closes the rotating log file, if any.
func Close() {
	if DefaultLoggingService != nil && DefaultLoggingService.rotator != nil {
		DefaultLoggingService.rotator.Close()
	}
}

// Logger returns the configured logger, or a stderr fallback when Init has
// not run yet (early startup, tests).
func Logger() *slog.Logger {
	if DefaultLoggingService != nil && DefaultLoggingService.Logger != nil {
		return DefaultLoggingService.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

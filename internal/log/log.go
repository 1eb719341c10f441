// Package log provides the process-wide structured logger behind a small
// facade so call sites stay independent of the logging backend.
package log

import (
	"sync"
)

type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsDebugEnabled() bool
}

var (
	once   sync.Once
	logger Logger = newLogrusLogger()
)

// GetLogger returns the process logger. Safe to call before Init; the logger
// then runs with default settings.
func GetLogger() Logger {
	return logger
}

// Init applies the configuration once. Later calls are no-ops.
func Init(cfg *Config) {
	once.Do(func() {
		if err := configure(cfg); err != nil {
			panic(err)
		}
	})
}

package log

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config carries the logging settings the adapter needs. It mirrors the
// global config's log section without importing the config package.
type Config struct {
	Level  string // debug / info / warn / error
	Format string // json / text

	FileEnabled    bool
	FilePath       string
	FileMaxSizeMB  int
	FileMaxAgeDays int
	FileMaxBackups int
	FileCompress   bool
}

type logrusLogger struct {
	log   *logrus.Logger
	entry *logrus.Entry
}

func newLogrusLogger() *logrusLogger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	return &logrusLogger{log: l, entry: logrus.NewEntry(l)}
}

func configure(cfg *Config) error {
	base, ok := logger.(*logrusLogger)
	if !ok {
		return nil
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	base.log.SetLevel(level)

	if cfg.Format == "json" {
		base.log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		base.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if cfg.FileEnabled {
		rotator := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.FileMaxSizeMB,
			MaxAge:     cfg.FileMaxAgeDays,
			MaxBackups: cfg.FileMaxBackups,
			Compress:   cfg.FileCompress,
		}
		base.log.SetOutput(io.MultiWriter(os.Stderr, rotator))
	}

	return nil
}

func (l *logrusLogger) Debug(args ...interface{}) { l.entry.Debug(args...) }
func (l *logrusLogger) Debugf(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

func (l *logrusLogger) Info(args ...interface{}) { l.entry.Info(args...) }
func (l *logrusLogger) Infof(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *logrusLogger) Warn(args ...interface{}) { l.entry.Warn(args...) }
func (l *logrusLogger) Warnf(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

func (l *logrusLogger) Error(args ...interface{}) { l.entry.Error(args...) }
func (l *logrusLogger) Errorf(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

func (l *logrusLogger) Fatal(args ...interface{}) { l.entry.Fatal(args...) }
func (l *logrusLogger) Fatalf(format string, args ...interface{}) {
	l.entry.Fatalf(format, args...)
}

func (l *logrusLogger) WithField(field string, value interface{}) Logger {
	return &logrusLogger{log: l.log, entry: l.entry.WithField(field, value)}
}

func (l *logrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &logrusLogger{log: l.log, entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *logrusLogger) WithError(err error) Logger {
	return &logrusLogger{log: l.log, entry: l.entry.WithError(err)}
}

func (l *logrusLogger) IsDebugEnabled() bool {
	return l.log.IsLevelEnabled(logrus.DebugLevel)
}

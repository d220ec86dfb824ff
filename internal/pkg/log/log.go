package log

import (
	"context"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type contextLoggerKey struct{}

var stdEntry = logrus.NewEntry(logrus.StandardLogger())

// Init configures the standard logger. format is "json" or "text".
func Init(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stdout)
	if strings.EqualFold(format, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// WithFields returns a context whose logger carries fields in addition to
// whatever the context logger already had.
func WithFields(ctx context.Context, fields logrus.Fields) context.Context {
	return context.WithValue(ctx, contextLoggerKey{}, GetLogger(ctx).WithFields(fields))
}

func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, contextLoggerKey{}, logger)
}

// GetLogger returns the context logger, or the standard one if none is set.
func GetLogger(ctx context.Context) *logrus.Entry {
	if ctx == nil {
		return stdEntry
	}
	if logger, ok := ctx.Value(contextLoggerKey{}).(*logrus.Entry); ok {
		return logger
	}
	return stdEntry
}

// These helpers return functions because getCaller in logrus can't skip frames.

func Errorf(ctx context.Context) func(format string, args ...interface{}) {
	return GetLogger(ctx).Errorf
}

func Warnf(ctx context.Context) func(format string, args ...interface{}) {
	return GetLogger(ctx).Warnf
}

func Infof(ctx context.Context) func(format string, args ...interface{}) {
	return GetLogger(ctx).Infof
}

func Debugf(ctx context.Context) func(format string, args ...interface{}) {
	return GetLogger(ctx).Debugf
}

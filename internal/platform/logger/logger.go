package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	CorrelationID = "correlation_id"

	correlationKey contextKey = "Correlation-Id"
)

var (
	logger  = newLogger(os.Stdout)
	newline = regexp.MustCompile(`(\n)|(\r\n)`)
)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	return l
}

// SetLevel accepts logrus level names. Unknown names leave the level unchanged.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}
	logger.SetLevel(lvl)
	return nil
}

// Standard exposes the underlying logger for libraries that take a
// Printf/Println logger.
func Standard() *logrus.Logger {
	return logger
}

func SetOutput(out io.Writer) {
	logger.SetOutput(out)
}

func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey, id)
}

func CorrelationIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(correlationKey).(string); ok {
		return id
	}
	return ""
}

func entry(ctx context.Context) *logrus.Entry {
	return logger.WithField(CorrelationID, CorrelationIDFrom(ctx))
}

// WithFields returns an entry carrying the correlation id and the given fields.
func WithFields(ctx context.Context, fields logrus.Fields) *logrus.Entry {
	return entry(ctx).WithFields(fields)
}

func Fatalf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Fatalf(format, args...)
}

func Infof(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Infof(format, args...)
}

func Info(ctx context.Context, msg string) {
	entry(ctx).Info(msg)
}

func Debugf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Debug(escapeString(format, args...))
}

func Warnf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Warnf(format, args...)
}

func Errorf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Error(escapeString(format, args...))
}

func LogExecutionTime(ctx context.Context, start time.Time, msg string) {
	entry(ctx).WithField("elapsed_ms", time.Since(start).Milliseconds()).Debug(msg)
}

func escapeString(format string, args ...interface{}) string {
	return newline.ReplaceAllString(fmt.Sprintf(format, args...), "\\n ")
}

// Package logger provides the context-scoped logrus logger used across
// recipe-agent. Callers attach an entry to a context with WithLogger and read
// it back with G; when nothing is attached the global entry L is used.
package logger

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Supported output formats.
const (
	FormatText = "fmt"
	FormatJSON = "json"
)

var (
	// G returns the logger entry stored in a context.
	G = GetLogger
	// L is the process-wide fallback entry.
	L = logrus.NewEntry(newLogger())
)

type loggerKey struct{}

// Options configures the global logger.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// WithLogger returns a copy of ctx carrying entry.
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, entry.WithContext(ctx))
}

// WithFields attaches fields to the logger carried by ctx and returns the new
// context. It is how a query id follows every log line of one agent query.
func WithFields(ctx context.Context, fields logrus.Fields) context.Context {
	return WithLogger(ctx, G(ctx).WithFields(fields))
}

// GetLogger returns the entry attached to ctx, or L bound to ctx.
func GetLogger(ctx context.Context) *logrus.Entry {
	entry := ctx.Value(loggerKey{})
	if entry == nil {
		return L.WithContext(ctx)
	}
	return entry.(*logrus.Entry)
}

// Configure applies level, format and output to the global logger. Empty
// fields leave the current setting untouched.
func Configure(opts Options) error {
	if opts.Level != "" {
		if err := SetLogLevel(opts.Level); err != nil {
			return err
		}
	}
	if opts.Format != "" {
		if err := SetLogFormat(opts.Format); err != nil {
			return err
		}
	}
	if opts.Output != nil {
		L.Logger.SetOutput(opts.Output)
	}
	return nil
}

// SetLogLevel sets the level of the global logger.
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", level)
	}
	L.Logger.SetLevel(lvl)
	return nil
}

// SetLogFormat switches the global logger between text and JSON output.
func SetLogFormat(format string) error {
	formatter, err := formatterFor(format)
	if err != nil {
		return err
	}
	L.Logger.SetFormatter(formatter)
	return nil
}

func newLogger() *logrus.Logger {
	l := logrus.New()
	formatter, _ := formatterFor(FormatText)
	l.SetFormatter(formatter)
	return l
}

func formatterFor(format string) (logrus.Formatter, error) {
	switch format {
	case FormatJSON:
		return &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "logLevel",
				logrus.FieldKeyMsg:   "message",
			},
			TimestampFormat: time.RFC3339Nano,
		}, nil
	case FormatText, "text", "":
		return &logrus.TextFormatter{
			TimestampFormat: time.RFC3339Nano,
			FullTimestamp:   true,
		}, nil
	default:
		return nil, errors.Errorf("unsupported log format %q", format)
	}
}

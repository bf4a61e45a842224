// Package logging builds the logrus logger shared by the server, the CLI and
// the stdio tool server.
package logging

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Setup returns a logger writing to w at the given level. format is "text"
// or "json".
func Setup(level, format string, w io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(lvl)
	switch format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return log, nil
}

// Discard returns a logger that drops everything. Tests and library callers
// that pass a nil logger get this.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// OrDiscard returns log, or a discarding logger when log is nil.
func OrDiscard(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return Discard()
	}
	return log
}

type ctxKey struct{}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the request ID stored in ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// FromContext returns log with the request_id field set when ctx carries one.
func FromContext(ctx context.Context, log logrus.FieldLogger) logrus.FieldLogger {
	log = OrDiscard(log)
	if id := RequestID(ctx); id != "" {
		return log.WithField("request_id", id)
	}
	return log
}

// Package logging provides the structured logger carried through every bus
// Context under bus.KeyLogger.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gitrdm/sparqlflow/pkg/bus"
)

// Logger wraps logrus.Logger with the query-id field lookup used throughout
// sparqlflow's actors.
type Logger struct {
	*logrus.Logger
}

// New constructs a Logger at level with the given format ("json" or "text").
func New(level, format string) *Logger {
	l := logrus.New()

	lv, err := logrus.ParseLevel(level)
	if err != nil {
		lv = logrus.InfoLevel
	}
	l.SetLevel(lv)

	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		l.SetFormatter(&logrus.TextFormatter{TimestampFormat: time.RFC3339, FullTimestamp: true})
	}
	l.SetOutput(os.Stderr)

	return &Logger{Logger: l}
}

// NewFromEnv builds a Logger from the LOG_LEVEL and LOG_FORMAT environment
// variables, defaulting to "info" and "text".
func NewFromEnv() *Logger {
	level := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if level == "" {
		level = "info"
	}
	format := strings.TrimSpace(os.Getenv("LOG_FORMAT"))
	if format == "" {
		format = "text"
	}
	return New(level, format)
}

// WithQuery returns a logrus.Entry tagged with the query correlation id
// carried in bc, if any.
func (l *Logger) WithQuery(bc *bus.Context) *logrus.Entry {
	entry := logrus.NewEntry(l.Logger)
	if bc == nil {
		return entry
	}
	if id, ok := bc.Value(bus.KeyQueryID); ok {
		entry = entry.WithField("query_id", id)
	}
	return entry
}

// FromContext retrieves the Logger carried under bus.KeyLogger, or a
// discard-level fallback if none was set.
func FromContext(bc *bus.Context) *Logger {
	if bc == nil {
		return New("panic", "text")
	}
	v, ok := bc.Value(bus.KeyLogger)
	if !ok {
		return New("panic", "text")
	}
	l, ok := v.(*Logger)
	if !ok {
		return New("panic", "text")
	}
	return l
}

// Package logging builds the logrus loggers shared by the command line and
// the storage backends. Components take a *logrus.Entry and add their own
// fields with WithField.
package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Field names used across packages.
const (
	FieldBackend = "backend"
	FieldKind    = "kind"
	FieldTarget  = "target"
	FieldCount   = "count"
	FieldSize    = "size"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New returns a logger writing to out at the named level ("info", "debug",
// ...). An empty level means warn so that normal command output stays
// uncluttered.
func New(level, format string, out io.Writer) (*logrus.Entry, error) {
	lvl := logrus.WarnLevel
	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		lvl = parsed
	}

	lgr := logrus.New()
	lgr.SetOutput(out)
	lgr.SetLevel(lvl)
	switch format {
	case "", FormatText:
		lgr.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case FormatJSON:
		lgr.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return logrus.NewEntry(lgr), nil
}

// Discard returns a logger that drops everything. Tests and library callers
// that pass no logger get this one.
func Discard() *logrus.Entry {
	lgr := logrus.New()
	lgr.SetOutput(io.Discard)
	lgr.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(lgr)
}

// OrDiscard returns log, or Discard when log is nil.
func OrDiscard(log *logrus.Entry) *logrus.Entry {
	if log == nil {
		return Discard()
	}
	return log
}

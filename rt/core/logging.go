package core

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// DefaultLogger writes through logrus. Info and below go to stdout, warnings and
// errors to stderr.
type DefaultLogger struct {
	out *logrus.Entry
	err *logrus.Entry
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return newDefaultLogger(prefix, debug, os.Stdout, os.Stderr)
}

func newDefaultLogger(prefix string, debug bool, stdout, stderr io.Writer) *DefaultLogger {
	mk := func(w io.Writer) *logrus.Entry {
		l := logrus.New()
		l.SetOutput(w)
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006/01/02 15:04:05.000000",
		})
		l.SetLevel(logrus.InfoLevel)
		if debug {
			l.SetLevel(logrus.DebugLevel)
		}
		if prefix == "" {
			return logrus.NewEntry(l)
		}
		return l.WithField("prefix", prefix)
	}
	return &DefaultLogger{out: mk(stdout), err: mk(stderr)}
}

func (l *DefaultLogger) DebugEnabled() bool {
	return l.out.Logger.IsLevelEnabled(logrus.DebugLevel)
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	lvl := logrus.InfoLevel
	if enabled {
		lvl = logrus.DebugLevel
	}
	l.out.Logger.SetLevel(lvl)
	l.err.Logger.SetLevel(lvl)
}

func (l *DefaultLogger) Debugf(format string, args ...any) { l.out.Debugf(format, args...) }
func (l *DefaultLogger) Infof(format string, args ...any)  { l.out.Infof(format, args...) }
func (l *DefaultLogger) Warnf(format string, args ...any)  { l.err.Warnf(format, args...) }
func (l *DefaultLogger) Errorf(format string, args ...any) { l.err.Errorf(format, args...) }

type nopLogger struct{}

func NewNopLogger() Logger                             { return &nopLogger{} }
func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}

// OrNop returns l, or a no-op logger when l is nil. Never returns nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NewNopLogger()
	}
	return l
}

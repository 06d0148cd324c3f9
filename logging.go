package fundamentals

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
)

// Logger is what sessions and their lessons log through. It satisfies core.Logger.
type Logger interface {
	core.Logger
	DebugEnabled() bool
	SetDebug(enabled bool)
}

type level uint8

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

// logSink is shared by a logger and every child made with With.
type logSink struct {
	out *log.Logger
	err *log.Logger
}

// DefaultLogger writes debug and info lines to one stream and warnings and errors
// to another, each tagged with a "[prefix]".
type DefaultLogger struct {
	debug  atomic.Bool
	prefix string
	sink   *logSink
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return newLogger(prefix, debug, os.Stdout, os.Stderr)
}

func newLogger(prefix string, debug bool, out, errOut io.Writer) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	l := &DefaultLogger{
		prefix: prefix,
		sink:   &logSink{out: log.New(out, "", flags), err: log.New(errOut, "", flags)},
	}
	l.debug.Store(debug)
	return l
}

// With returns a child logging to the same streams under "prefix/sub". The child
// starts with the parent's debug switch and keeps its own from then on.
func (l *DefaultLogger) With(sub string) *DefaultLogger {
	prefix := sub
	if l.prefix != "" {
		prefix = l.prefix + "/" + sub
	}
	child := &DefaultLogger{prefix: prefix, sink: l.sink}
	child.debug.Store(l.DebugEnabled())
	return child
}

func (l *DefaultLogger) DebugEnabled() bool    { return l.debug.Load() }
func (l *DefaultLogger) SetDebug(enabled bool) { l.debug.Store(enabled) }

func (l *DefaultLogger) write(lv level, format string, args ...any) {
	if lv == levelDebug && !l.DebugEnabled() {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		msg = fmt.Sprintf("[%s] %s: %s", l.prefix, levelNames[lv], msg)
	} else {
		msg = levelNames[lv] + ": " + msg
	}
	dst := l.sink.out
	if lv >= levelWarn {
		dst = l.sink.err
	}
	dst.Print(msg)
}

func (l *DefaultLogger) Debugf(format string, args ...any) { l.write(levelDebug, format, args...) }
func (l *DefaultLogger) Infof(format string, args ...any)  { l.write(levelInfo, format, args...) }
func (l *DefaultLogger) Warnf(format string, args ...any)  { l.write(levelWarn, format, args...) }
func (l *DefaultLogger) Errorf(format string, args ...any) { l.write(levelError, format, args...) }

type nopLogger struct{ core.Logger }

func NewNopLogger() Logger { return nopLogger{core.NopLogger()} }

func (nopLogger) DebugEnabled() bool { return false }
func (nopLogger) SetDebug(bool)      {}

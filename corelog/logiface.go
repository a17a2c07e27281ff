package corelog

import (
	"fmt"

	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

// logifaceLogger adapts a type-erased logiface.Logger into this
// package's Logger interface, so every package in this module can log
// through the same structured pipeline the rest of the pack uses.
type logifaceLogger struct {
	l *logiface.Logger[logiface.Event]
}

// NewLogifaceLogger wraps an already-configured logiface logger.
// Use NewZerologLogger to build one backed by zerolog in one call.
func NewLogifaceLogger(l *logiface.Logger[logiface.Event]) Logger {
	return &logifaceLogger{l: l}
}

// NewZerologLogger builds a Logger backed by github.com/rs/zerolog via
// github.com/joeycumines/izerolog. Nothing in this module installs it
// by default; corert.New falls back to NoOp when given a nil Logger.
func NewZerologLogger(z zerolog.Logger) Logger {
	typed := logiface.New[*izerolog.Event](izerolog.WithZerolog(z))
	return NewLogifaceLogger(typed.Logger())
}

func toLogifaceLevel(l Level) logiface.Level {
	switch l {
	case LevelDebug:
		return logiface.LevelDebug
	case LevelInfo:
		return logiface.LevelInformational
	case LevelWarn:
		return logiface.LevelWarning
	case LevelError:
		return logiface.LevelError
	default:
		return logiface.LevelInformational
	}
}

func (x *logifaceLogger) IsEnabled(level Level) bool {
	lvl := x.l.Level()
	return lvl.Enabled() && toLogifaceLevel(level) <= lvl
}

func (x *logifaceLogger) Log(e Entry) {
	b := x.l.Build(toLogifaceLevel(e.Level))
	if !b.Enabled() {
		return
	}
	if e.Pool != "" {
		b = b.Str("pool", e.Pool)
	}
	if e.TaskID != 0 {
		b = b.Int("task", int(e.TaskID))
	}
	if e.Errno != 0 {
		b = b.Int("errno", e.Errno)
	}
	for k, v := range e.Fields {
		b = b.Str(k, toString(v))
	}
	if e.Err != nil {
		b = b.Err(e.Err)
	}
	b.Log(e.Message)
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

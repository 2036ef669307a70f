// Package jitlog is a thin structured-logging wrapper over the standard
// library's log package. No third-party logging library appears
// anywhere in the example pack's dependency surface, so this stays on
// the standard library rather than reaching for one ungrounded (see
// DESIGN.md).
package jitlog

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Level is a coarse severity, printed as a bracketed prefix the way the
// teacher's own log.Printf call sites do by hand.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger wraps *log.Logger with a minimum level filter and a set of
// sticky fields rendered as key=value pairs ahead of the message.
type Logger struct {
	std    *log.Logger
	level  Level
	fields map[string]any
}

// New creates a Logger writing to w with the given minimum level.
func New(w io.Writer, level Level) *Logger {
	return &Logger{
		std:   log.New(w, "", log.LstdFlags|log.Lmicroseconds),
		level: level,
	}
}

// Default creates a Logger writing to stderr at LevelInfo, the
// configuration every cmd/armjit entry point starts with.
func Default() *Logger {
	return New(os.Stderr, LevelInfo)
}

// With returns a copy of l with an additional sticky field; fields
// accumulate, so chained With calls build up context the way a block's
// address or a literal's value might be attached once and reused across
// several log lines during emission.
func (l *Logger) With(key string, value any) *Logger {
	fields := make(map[string]any, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}
	fields[key] = value
	return &Logger{std: l.std, level: l.level, fields: fields}
}

func (l *Logger) log(level Level, format string, args ...any) {
	if level < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	for k, v := range l.fields {
		msg = fmt.Sprintf("%s=%v %s", k, v, msg)
	}
	l.std.Printf("[%s] %s", level, msg)
}

func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, format, args...) }

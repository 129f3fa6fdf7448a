package output

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	glog "github.com/goliatone/go-logger/glog"
)

// Level orders log severities.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"trace", "debug", "info", "warn", "error", "fatal"}

func (l Level) String() string {
	if l >= LevelTrace && l <= LevelFatal {
		return levelNames[l]
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Logger writes one line per record to w, for the CLI's stderr:
//
//	warn: installation monitor error path=/var/lib/flatpak error="..."
//
// Records below the minimum level are dropped. Fatal only logs; exiting
// is left to the caller.
type Logger struct {
	mu     *sync.Mutex
	w      io.Writer
	min    Level
	fields string
}

var _ glog.Logger = (*Logger)(nil)

// NewLogger creates a Logger writing records at or above min to w.
func NewLogger(w io.Writer, min Level) *Logger {
	return &Logger{mu: &sync.Mutex{}, w: w, min: min}
}

func (l *Logger) Trace(msg string, args ...any) { l.log(LevelTrace, msg, args) }
func (l *Logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.log(LevelInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(LevelWarn, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.log(LevelError, msg, args) }
func (l *Logger) Fatal(msg string, args ...any) { l.log(LevelFatal, msg, args) }

// WithContext returns l; records carry no context values.
func (l *Logger) WithContext(context.Context) glog.Logger { return l }

// WithFields returns a logger that appends fields to every record.
func (l *Logger) WithFields(fields map[string]any) glog.Logger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	return &Logger{mu: l.mu, w: l.w, min: l.min, fields: l.fields + formatArgs(args)}
}

func (l *Logger) log(level Level, msg string, args []any) {
	if level < l.min {
		return
	}
	line := level.String() + ": " + msg + formatArgs(args) + l.fields + "\n"
	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.w, line)
}

// formatArgs renders alternating key/value args as " k=v" pairs. A
// trailing key without a value is shown as k=(missing).
func formatArgs(args []any) string {
	var sb strings.Builder
	for i := 0; i < len(args); i += 2 {
		key := fmt.Sprint(args[i])
		var val any = "(missing)"
		if i+1 < len(args) {
			val = args[i+1]
		}
		sb.WriteString(" " + key + "=" + formatValue(val))
	}
	return sb.String()
}

func formatValue(v any) string {
	s := fmt.Sprint(v)
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

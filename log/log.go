// Package log is a small wrapper over log/slog, writing JSON records to a rotated file (or
// stderr). A nil *Logger is valid: debug and info are dropped, warnings and errors go to the
// default slog logger.
package log

import(
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	*slog.Logger
	LogFile string
	Start   time.Time
}

// New returns a logger at the given level ("debug", "info", "warn", "error"). If dir is
// empty, records go to stderr; otherwise to dir/flytau.slog, rotated at 64MB.
func New(level string, dir string) *Logger {
	var w io.Writer = os.Stderr
	filename := ""
	if dir != "" {
		lj := &lumberjack.Logger{
			Filename:   filepath.Join(dir, "flytau.slog"),
			MaxSize:    64, // MB
			MaxAge:     14,
			MaxBackups: 4,
			Compress:   true,
		}
		w = lj
		filename = lj.Filename
	}

	return NewWithWriter(level, w, filename)
}

func NewWithWriter(level string, w io.Writer, filename string) *Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return &Logger{
		Logger:  slog.New(h),
		LogFile: filename,
		Start:   time.Now(),
	}
}

func ParseLevel(level string) slog.Level {
	switch level {
	case "debug": return slog.LevelDebug
	case "warn":  return slog.LevelWarn
	case "error": return slog.LevelError
	case "info", "":  return slog.LevelInfo
	default:
		fmt.Fprintf(os.Stderr, "%s: invalid log level, using info\n", level)
		return slog.LevelInfo
	}
}

func (l *Logger)enabled(lvl slog.Level) bool {
	return l != nil && l.Logger.Enabled(context.Background(), lvl)
}

func (l *Logger)Debugf(msg string, args ...any) {
	if l.enabled(slog.LevelDebug) {
		l.Logger.Debug(fmt.Sprintf(msg, args...))
	}
}

func (l *Logger)Infof(msg string, args ...any) {
	if l.enabled(slog.LevelInfo) {
		l.Logger.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *Logger)Warnf(msg string, args ...any) {
	if l == nil {
		slog.Warn(fmt.Sprintf(msg, args...))
	} else {
		l.Logger.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *Logger)Errorf(msg string, args ...any) {
	if l == nil {
		slog.Error(fmt.Sprintf(msg, args...))
	} else {
		l.Logger.Error(fmt.Sprintf(msg, args...))
	}
}

// With returns a logger that adds the given attributes to every record. With on a nil
// logger returns nil.
func (l *Logger)With(args ...any) *Logger {
	if l == nil { return nil }
	return &Logger{
		Logger:  l.Logger.With(args...),
		LogFile: l.LogFile,
		Start:   l.Start,
	}
}

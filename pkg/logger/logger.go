// Package logger provides opinionated slog construction for hospitalchat.
//
// Line-oriented commands log pretty, colorized output to stderr. The
// full-screen TUI and the long running web server log to a rotating file so
// log lines never tear through the rendered UI.
package logger

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogSizeMB  = 5
	maxLogBackups = 5
	maxLogAgeDays = 14
)

type config struct {
	level   slog.Level
	pretty  bool
	json    bool
	source  bool
	writers []io.Writer
}

// New builds a *slog.Logger from the given options. With no options it
// writes plain text at Info level to stderr.
func New(opts ...Option) *slog.Logger {
	c := &config{
		level: slog.LevelInfo,
	}
	for _, opt := range opts {
		opt(c)
	}

	var w io.Writer
	switch len(c.writers) {
	case 0:
		w = os.Stderr
	case 1:
		w = c.writers[0]
	default:
		w = io.MultiWriter(c.writers...)
	}

	return slog.New(newHandler(c, w))
}

func newHandler(c *config, w io.Writer) slog.Handler {
	handlerOpts := &slog.HandlerOptions{
		Level:     c.level,
		AddSource: c.source,
	}

	switch {
	case c.json:
		return slog.NewJSONHandler(w, handlerOpts)

	case c.pretty:
		level := charmlog.InfoLevel
		if c.level <= slog.LevelDebug {
			level = charmlog.DebugLevel
		}
		return charmlog.NewWithOptions(w, charmlog.Options{
			Level:           level,
			ReportTimestamp: true,
			ReportCaller:    c.source,
		})

	default:
		return slog.NewTextHandler(w, handlerOpts)
	}
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewRotatingFile returns a size-rotated, compressed log file writer.
func NewRotatingFile(path string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		Compress:   true,
	}
}

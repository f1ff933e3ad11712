// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

// Options selects the log output format and verbosity.
type Options struct {
	// Format is auto, text or json. auto picks text on a terminal.
	Format string
	// Level is debug, info, warn or error; anything else means info.
	Level string
}

// Init installs the global logger. Call once, after flags and config are
// resolved, and before anything logs.
func Init(opts Options) {
	level := parseLevel(opts.Level)
	out := os.Stderr

	var h slog.Handler
	if wantText(opts.Format, out) {
		h = tinter.NewHandler(out, &tinter.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
		})
	} else {
		h = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(h))
}

func wantText(format string, w io.Writer) bool {
	switch strings.ToLower(format) {
	case "text", "tint":
		return true
	case "json":
		return false
	}
	return IsTTY(w)
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// IsTTY reports whether w is attached to a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

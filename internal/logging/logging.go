// Package logging builds the run logger from the verbosity settings.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Options selects the level, format and destination of log records.
type Options struct {
	Verbose bool
	Quiet   bool
	Logfile string
	Format  string // "text" (default) or "json"

	// Stderr receives records when Logfile is empty.
	Stderr io.Writer
}

// Level maps the verbosity flags to a slog level. Quiet wins over verbose.
func (o Options) Level() slog.Level {
	switch {
	case o.Quiet:
		return slog.LevelError
	case o.Verbose:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New creates an isolated logger; it never touches slog.Default. The returned
// closer releases the log file when one was opened.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	var (
		w      io.Writer = opts.Stderr
		closer io.Closer = nopCloser{}
	)
	if w == nil {
		w = os.Stderr
	}
	if opts.Logfile != "" {
		f, err := os.OpenFile(opts.Logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: open %s: %w", opts.Logfile, err)
		}
		w, closer = f, f
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level()}
	var handler slog.Handler
	if opts.Format == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler), closer, nil
}

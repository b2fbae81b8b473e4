package logging

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the process logger.
type Options struct {
	Level slog.Level
	// File enables a rotating JSON log file in addition to Stdout when set.
	File string
}

// New builds the JSON slog logger used by the service. The returned closer
// releases the rotating file, if any.
func New(stdout io.Writer, opts Options) (*slog.Logger, io.Closer) {
	writer := stdout
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}
		writer = io.MultiWriter(stdout, rotating)
		closer = rotating
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: opts.Level})
	return slog.New(handler), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

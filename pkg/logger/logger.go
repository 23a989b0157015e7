package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Options configures the process-wide logger.
type Options struct {
	Service string
	Env     string
	Level   string
	// Pretty switches to a human readable console writer.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
}

// New builds a zerolog logger tagged with service and env and installs it as
// the global zerolog logger.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	l := zerolog.New(out).
		Level(ParseLevel(opts.Level)).
		With().
		Timestamp().
		Str("service", opts.Service).
		Str("env", opts.Env).
		Logger()

	zlog.Logger = l
	return l
}

// ParseLevel maps a config string onto a zerolog level, defaulting to info.
func ParseLevel(lvl string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

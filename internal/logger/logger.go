// Package logger configures the global zerolog logger.
package logger

import (
	"io"
	stdlog "log"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init sets the global level and output. Console output is human readable;
// otherwise one JSON object per line is written to stderr.
func Init(debug, console bool) {
	InitWriter(os.Stderr, debug, console)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, debug, console bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	stdlog.SetOutput(w)
}

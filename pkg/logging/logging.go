// Package logging configures the process-wide zerolog logger used by
// cmd/attest (pkg/setup prints its own banners with fmt), and keeps
// gnark's own internal logger pointed at the same sink so proof-system
// diagnostics and application logs interleave in one stream.
package logging

import (
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	gnarklogger "github.com/consensys/gnark/logger"
)

// Init installs the process-wide logger. When w's file descriptor is a
// terminal, output is colorized via go-colorable; otherwise it's plain
// JSON, suitable for piping to a log collector.
func Init(level zerolog.Level, w *os.File) zerolog.Logger {
	var out io.Writer = w
	if isatty.IsTerminal(w.Fd()) {
		out = zerolog.ConsoleWriter{Out: colorable.NewColorable(w), TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(out).With().Timestamp().Logger().Level(level)
	zerolog.DefaultContextLogger = &logger

	gnarklogger.SetOutput(out)
	gnarklogger.SetLevel(zeroToGnarkLevel(level))

	return logger
}

func zeroToGnarkLevel(level zerolog.Level) zerolog.Level {
	// gnark's logger package takes a zerolog.Level directly; kept as a
	// named hop so a future divergence (e.g. clamping Debug in prod) has
	// a single place to land.
	return level
}

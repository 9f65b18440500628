// Package logging configures the process-wide structured logger shared by
// the CLI tools and the prover. gnark already pulls in zerolog transitively;
// this package reuses that same dependency instead of adding a second
// logging library.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Logger returns the process-wide logger, initializing it on first use with
// a TTY-aware console writer when stderr is a terminal and plain JSON lines
// on stderr otherwise (CI logs, piped output). The initial minimum level is
// Info.
func Logger() *zerolog.Logger {
	once.Do(func() {
		var out io.Writer = os.Stderr
		if isatty.IsTerminal(os.Stderr.Fd()) {
			out = zerolog.ConsoleWriter{Out: colorable.NewColorableStderr(), TimeFormat: "15:04:05"}
		}
		logger = zerolog.New(out).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	})
	return &logger
}

// SetLevel adjusts the minimum level the process-wide logger emits.
// The prover's hot path (circuit Define, Prove) never logs above Debug,
// so production runs stay silent unless a caller explicitly raises
// verbosity.
func SetLevel(level zerolog.Level) {
	l := Logger().Level(level)
	logger = l
}

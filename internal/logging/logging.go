// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Level   string    // trace, debug, info, warn, error; default warn
	JSON    bool      // structured lines instead of console output
	NoColor bool
	Out     io.Writer // default os.Stderr
}

// ParseLevel maps a level name to a zerolog level. Empty means warn.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return zerolog.WarnLevel, nil
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.WarnLevel, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

// Setup installs the global logger and returns it. An invalid level falls
// back to warn and is reported as an error.
func Setup(opts Options) (zerolog.Logger, error) {
	lvl, err := ParseLevel(opts.Level)
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if !opts.JSON {
		out = zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    opts.NoColor,
			TimeFormat: time.Kitchen,
		}
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return log.Logger, err
}

// OpenFile returns a writer appending to path, for modes where stderr is
// not available such as the full-screen TUI.
func OpenFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

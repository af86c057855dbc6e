// ABOUTME: zerolog logger construction for the CLI and MCP server.
// ABOUTME: Human-readable console output on a terminal, JSON lines otherwise.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Formats accepted by New.
const (
	FormatAuto    = "auto"
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New builds a logger writing to w at the given level. An empty level means
// "warn" so normal CLI use stays quiet.
func New(level, format string, w io.Writer) (zerolog.Logger, error) {
	lvl := zerolog.WarnLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	out := w
	switch strings.ToLower(format) {
	case "", FormatAuto:
		if isTerminal(w) {
			out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
		}
	case FormatConsole:
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: !isTerminal(w)}
	case FormatJSON:
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q (use auto, console or json)", format)
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// Default is the logger used before configuration is loaded.
func Default() zerolog.Logger {
	l, _ := New("", FormatAuto, os.Stderr)
	return l
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

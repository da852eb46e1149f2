// Package logger configures the process-wide zerolog instance. Verbose runs
// log to stderr with a console writer; otherwise logs go to a rotating file
// under the state dir so they never fight the TUI for the terminal.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"vidmatic/internal/dirs"
)

var log = zerolog.Nop()

// Init sets up the global logger. Failure to open the log file degrades to a
// no-op logger rather than breaking the CLI.
func Init(verbose bool) {
	var out io.Writer
	level := zerolog.InfoLevel

	if verbose {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		level = zerolog.DebugLevel
	} else {
		stateDir, err := dirs.StateDir()
		if err != nil {
			return
		}
		if err := dirs.Ensure(stateDir); err != nil {
			return
		}
		out = &lumberjack.Logger{
			Filename:   filepath.Join(stateDir, "vidmatic.log"),
			MaxSize:    5, // MB
			MaxBackups: 2,
		}
	}

	log = zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Debug starts a debug-level event.
func Debug() *zerolog.Event { return log.Debug() }

// Info starts an info-level event.
func Info() *zerolog.Event { return log.Info() }

// Warn starts a warn-level event.
func Warn() *zerolog.Event { return log.Warn() }

// Error starts an error-level event.
func Error() *zerolog.Event { return log.Error() }

// Package logger provides the shared logging option group for commands.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is a go-flags option group embedded by every command.
type Logger struct {
	Level  string `short:"L" long:"log-level" env:"LOG_LEVEL" description:"Logging level" default:"info" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error"`
	JSON   bool   `long:"log-json"  env:"LOG_JSON"  description:"Log in JSON format instead of console output"`
	NoTime bool   `long:"log-no-time" description:"Omit timestamps (useful under systemd/docker)"`
}

// Setup configures the global zerolog logger from the parsed options.
func (l *Logger) Setup() {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if !l.JSON {
		cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		if l.NoTime {
			cw.FormatTimestamp = func(interface{}) string { return "" }
		}
		log.Logger = log.Output(cw)
	}
}

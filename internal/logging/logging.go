// Package logging builds the structured loggers shared by every component.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/phuslu/log"
)

// Config selects level, format and destination.
type Config struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // console or json
	File   string `yaml:"file,omitempty" toml:"file,omitempty"`
}

// New builds a logger from cfg. A non-empty File sends output there instead of stderr.
func New(cfg Config) *log.Logger {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg Config, stderr io.Writer) *log.Logger {
	level := log.ParseLevel(strings.ToLower(cfg.Level))
	if cfg.Level == "" {
		level = log.InfoLevel
	}
	logger := &log.Logger{
		Level:      level,
		TimeFormat: "15:04:05",
	}
	switch {
	case cfg.File != "":
		logger.Writer = &log.FileWriter{
			Filename:   cfg.File,
			MaxSize:    50 * 1024 * 1024,
			MaxBackups: 3,
		}
	case strings.EqualFold(cfg.Format, "json"):
		logger.Writer = &log.IOWriter{Writer: stderr}
	default:
		logger.Writer = &log.ConsoleWriter{Writer: stderr, ColorOutput: isTerminal(stderr)}
	}
	return logger
}

// Nop returns a logger that discards everything.
func Nop() *log.Logger {
	return &log.Logger{Level: log.PanicLevel, Writer: &log.IOWriter{Writer: io.Discard}}
}

// OrNop returns l, or a discarding logger when l is nil.
func OrNop(l *log.Logger) *log.Logger {
	if l == nil {
		return Nop()
	}
	return l
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return log.IsTerminal(f.Fd())
}

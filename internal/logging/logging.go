// Package logging holds the process-wide logger. Library packages log at
// debug level only; the CLI raises the level from configuration.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once      sync.Once
	singleton *log.Logger
)

func get() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "collide",
			Level:           log.WarnLevel,
		})
	})
	return singleton
}

// Logger returns the shared logger.
func Logger() *log.Logger {
	return get()
}

// SetLevel parses and applies a level name (debug, info, warn, error).
func SetLevel(name string) error {
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return err
	}
	get().SetLevel(lvl)
	return nil
}

// SetOutput redirects log output.
func SetOutput(w io.Writer) {
	get().SetOutput(w)
}

func Debug(msg string, keyvals ...interface{}) {
	get().Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...interface{}) {
	get().Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...interface{}) {
	get().Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...interface{}) {
	get().Error(msg, keyvals...)
}

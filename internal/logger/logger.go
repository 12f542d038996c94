// Package logger writes levelled diagnostics to stderr through
// charmbracelet/log. Warnings are always shown; --verbose lowers the
// threshold to debug so a run's stage-by-stage counts can be followed.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// Level is a logging threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelOff
)

var mu sync.RWMutex

var (
	level      Level     = LevelWarn
	output     io.Writer = os.Stderr
	timestamps bool
)

var std = build()

// build must be called with mu held for writing, or during init.
func build() *log.Logger {
	return log.NewWithOptions(output, log.Options{
		Level:           toCharm(level),
		ReportTimestamp: timestamps,
		TimeFormat:      "2006-01-02T15:04:05Z07:00",
	})
}

func toCharm(l Level) log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelInfo:
		return log.InfoLevel
	case LevelWarn:
		return log.WarnLevel
	default:
		return log.FatalLevel + 1
	}
}

func reconfigure(apply func()) {
	mu.Lock()
	defer mu.Unlock()
	apply()
	std = build()
}

// SetLevel sets the lowest level that is written.
func SetLevel(l Level) {
	reconfigure(func() { level = l })
}

// SetVerbose switches between debug and the default warn threshold.
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelWarn)
}

// IsVerbose reports whether debug output is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return level == LevelDebug
}

// SetOutput redirects log output. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	reconfigure(func() { output = w })
}

// SetTimestamps prefixes every line with the time. The daemon turns this on.
func SetTimestamps(on bool) {
	reconfigure(func() { timestamps = on })
}

func current() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return std
}

func Debug(format string, args ...any) {
	current().Debugf(format, args...)
}

func Info(format string, args ...any) {
	current().Infof(format, args...)
}

func Warn(format string, args ...any) {
	current().Warnf(format, args...)
}

// Section prints a debug-level header.
func Section(name string) {
	current().Debug("=== " + name + " ===")
}

// Stage prints a debug-level pipeline transition. The run ID is cut to
// eight characters.
func Stage(runID, stage, format string, args ...any) {
	if len(runID) > 8 {
		runID = runID[:8]
	}
	current().Debug(fmt.Sprintf(format, args...), "run", runID, "stage", stage)
}

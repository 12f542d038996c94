package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, verboseOn bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseOn)
	t.Cleanup(func() {
		SetVerbose(false)
		SetTimestamps(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func lines(buf *bytes.Buffer) []string {
	s := strings.TrimRight(buf.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestLevels_WhenVerbose(t *testing.T) {
	tests := []struct {
		name  string
		log   func(string, ...any)
		level string
	}{
		{"debug", Debug, "DEBU"},
		{"info", Info, "INFO"},
		{"warn", Warn, "WARN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, true)
			tt.log("dropped %d rows", 2)

			got := lines(buf)
			if assert.Len(t, got, 1) {
				assert.Contains(t, got[0], tt.level)
				assert.Contains(t, got[0], "dropped 2 rows")
			}
		})
	}
}

func TestLevels_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Debug("a")
	Info("b")
	Warn("c")
	Section("d")
	Stage("run", "fetching", "e")

	got := lines(buf)
	if assert.Len(t, got, 1) {
		assert.Contains(t, got[0], "WARN")
		assert.Contains(t, got[0], "c")
	}
}

func TestSetLevel(t *testing.T) {
	tests := []struct {
		name  string
		level Level
		want  int
	}{
		{"info", LevelInfo, 2},
		{"off", LevelOff, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, false)
			SetLevel(tt.level)

			Debug("a")
			Info("b")
			Warn("c")

			assert.Len(t, lines(buf), tt.want)
			assert.False(t, IsVerbose())
		})
	}
}

func TestSection(t *testing.T) {
	buf := capture(t, true)

	Section("Normalise")

	assert.Contains(t, buf.String(), "=== Normalise ===")
}

func TestStage_ShortensRunID(t *testing.T) {
	buf := capture(t, true)

	Stage("0f8fad5b-d9cb-469f-a165-70867728950e", "normalized", "chat in_scope=%d", 3)

	out := buf.String()
	assert.Contains(t, out, "chat in_scope=3")
	assert.Contains(t, out, "run=0f8fad5b")
	assert.NotContains(t, out, "d9cb")
	assert.Contains(t, out, "stage=normalized")
}

func TestStage_ShortRunIDUnchanged(t *testing.T) {
	buf := capture(t, true)

	Stage("abc", "scored", "done")

	assert.Contains(t, buf.String(), "run=abc")
}

func TestSetTimestamps(t *testing.T) {
	buf := capture(t, false)
	SetTimestamps(true)

	Warn("late")

	got := lines(buf)
	if assert.Len(t, got, 1) {
		assert.False(t, strings.HasPrefix(got[0], "WARN"), "timestamp should lead the line: %q", got[0])
	}
}

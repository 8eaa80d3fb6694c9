package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"verbose", LevelDebug},
		{"normal", LevelInfo},
		{"", LevelInfo},
		{"QUIET", LevelWarn},
		{"silent", LevelError},
		{"whatever", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("session", LevelWarn, &buf)

	l.Debugf("hidden %d", 1)
	l.Infof("hidden %d", 2)
	l.Warnf("shown %d", 3)
	l.Errorf("shown %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[session] [WARN] shown 3")
	assert.Contains(t, out, "[session] [ERROR] shown 4")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestWithSharesSink(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("client", LevelDebug, &buf)
	l.With("auth").Infof("login")

	assert.Contains(t, buf.String(), "[auth] [INFO] login")
	assert.Equal(t, l.RunID(), l.With("auth").RunID())
}

func TestNilAndDiscardLoggersAreSafe(t *testing.T) {
	var l *Logger
	l.Infof("no panic")
	Discard().Errorf("dropped")
}

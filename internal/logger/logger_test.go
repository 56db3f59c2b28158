package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelNormal, &buf)

	l.Debug("hidden %d", 1)
	l.Info("shown %d", 2)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown 2")

	buf.Reset()
	l.SetLevel(LevelVerbose)
	l.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")

	buf.Reset()
	l.SetLevel(LevelOff)
	l.Error("silent")
	assert.Empty(t, buf.String())
}

func TestChildSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	parent := NewWithFormat(LevelNormal, &buf, FormatJSON)
	child := parent.With("filter")

	parent.SetLevel(LevelVerbose)
	child.Debug("resort")

	out := buf.String()
	assert.True(t, strings.Contains(out, `"component":"filter"`), out)
	assert.Contains(t, out, `"message":"resort"`)
	assert.Equal(t, LevelVerbose, child.GetLevel())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"off":     LevelOff,
		"QUIET":   LevelOff,
		"debug":   LevelVerbose,
		"verbose": LevelVerbose,
		"info":    LevelNormal,
		"":        LevelNormal,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

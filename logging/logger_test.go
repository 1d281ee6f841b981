package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: LevelInfo, Format: FormatJSON, Output: &buf})

	l.Debug("hidden")
	l.Info("agent.run.start", "agent", "host")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "agent.run.start", entry["msg"])
	assert.Equal(t, "host", entry["agent"])
}

func TestNewLogger_PrettyWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := With(NewLogger(&Config{Level: LevelDebug, Format: FormatPretty, Output: &buf, NoColor: true}), "agent", "alice")

	l.Warn("agent.tool.unknown", "tool", "dance")

	out := buf.String()
	assert.Contains(t, out, "agent.tool.unknown")
	assert.Contains(t, out, "agent=alice")
	assert.Contains(t, out, "tool=dance")
}

func TestWith_NoOp(t *testing.T) {
	l := With(NoOpLogger{}, "k", "v")
	assert.Equal(t, NoOpLogger{}, l)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("ERROR"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
	assert.Equal(t, "WARN", LevelWarn.String())
}

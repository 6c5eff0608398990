package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/folio/internal/logging"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(logging.Config{Level: logging.LevelWarn, Output: &buf})

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown %d", 1)
	l.Error("shown %d", 2)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, "shown 1", lines[0]["message"])
	assert.Equal(t, "error", lines[1]["level"])
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf}).
		WithComponent("reader").
		WithFields(map[string]any{"chapter": 3}).
		WithField("book", "moby")

	l.Info("opened")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "reader", lines[0]["component"])
	assert.Equal(t, "moby", lines[0]["book"])
	assert.EqualValues(t, 3, lines[0]["chapter"])
}

func TestNilAndNopLoggersAreSafe(t *testing.T) {
	var l *logging.Logger
	assert.NotPanics(t, func() {
		l.WithComponent("x").Info("nothing %s", "here")
		logging.Nop().Error("discarded")
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logging.LevelDebug, logging.ParseLevel("DEBUG"))
	assert.Equal(t, logging.LevelWarn, logging.ParseLevel("warning"))
	assert.Equal(t, logging.LevelError, logging.ParseLevel(" error "))
	assert.Equal(t, logging.LevelInfo, logging.ParseLevel("verbose"))
	assert.Equal(t, "warn", logging.LevelWarn.String())
}

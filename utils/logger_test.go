package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEntries(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry LogEntry
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_WritesJSONEntries(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf).Named("engine")

	logger.Info("Applying to job", Fields{"platform": "lever"})
	logger.Error("Failed to open browser session", errors.New("boom"))

	entries := decodeEntries(t, &buf)
	require.Len(t, entries, 2)

	assert.Equal(t, INFO, entries[0].Level)
	assert.Equal(t, "engine", entries[0].Component)
	assert.Equal(t, "Applying to job", entries[0].Message)
	assert.Equal(t, map[string]interface{}{"platform": "lever"}, entries[0].Data)

	assert.Equal(t, ERROR, entries[1].Level)
	assert.Equal(t, "boom", entries[1].Error)
}

func TestLogger_ErrorWithNilError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf)

	assert.NotPanics(t, func() { logger.Error("no cause", nil) })

	entries := decodeEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Error)
}

package telemetry

import (
	"bufio"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogEventAppendsJSONLines(t *testing.T) {
	dir := t.TempDir()

	tel := New(dir, zap.NewNop())
	require.True(t, tel.Enabled())
	require.NotEmpty(t, tel.Path())

	tel.LogEvent("pipeline_run", map[string]interface{}{"success": true, "pdfs_created": 4})
	tel.LogEvent("pipeline_run", map[string]interface{}{"success": false})
	require.NoError(t, tel.Close())

	f, err := os.Open(tel.Path())
	require.NoError(t, err)
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		events = append(events, ev)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, events, 2)
	assert.Equal(t, "pipeline_run", events[0].Event)
	assert.NotEmpty(t, events[0].Timestamp)
	assert.Equal(t, true, events[0].Payload["success"])
	assert.Equal(t, float64(4), events[0].Payload["pdfs_created"])
}

func TestNewAppendsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first := New(dir, zap.NewNop())
	first.LogEvent("run", nil)
	require.NoError(t, first.Close())

	second := New(dir, zap.NewNop())
	second.LogEvent("run", nil)
	require.NoError(t, second.Close())

	data, err := os.ReadFile(second.Path())
	require.NoError(t, err)
	assert.Equal(t, 2, countLines(data))
}

func TestDisabledLoggerDropsEvents(t *testing.T) {
	disabled := &Logger{logger: zap.NewNop()}

	assert.False(t, disabled.Enabled())
	assert.Empty(t, disabled.Path())
	disabled.LogEvent("ignored", nil)
	assert.NoError(t, disabled.Close())
}

func countLines(data []byte) int {
	n := 0
	for _, b := range data {
		if b == '\n' {
			n++
		}
	}
	return n
}

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer CloseLogger()

	assert.True(t, Enabled())

	DebugLog("comparing %d assets", 4)
	LogWarning("unreadable pHash for %s", "a.jpg")
	LogError("boom")
	LogGroupingRun(4, 1, 3, time.Millisecond)
	LogAssetImported("/photos/a.jpg", true, "")
	LogAssetImported("/photos/b.txt", false, "unsupported file type")

	out := buf.String()
	assert.Contains(t, out, "DupeFinder Debug Log Started")
	assert.Contains(t, out, "comparing 4 assets")
	assert.Contains(t, out, "WARNING: unreadable pHash for a.jpg")
	assert.Contains(t, out, "ERROR: boom")
	assert.Contains(t, out, "GROUPED: 4 assets into 1 duplicate sets (3 duplicates)")
	assert.Contains(t, out, "IMPORTED: /photos/a.jpg")
	assert.Contains(t, out, "FAILED: /photos/b.txt - Error: unsupported file type")
}

func TestDebugLogDisabled(t *testing.T) {
	CloseLogger()
	assert.False(t, Enabled())

	// must not panic without a logger
	DebugLog("ignored")
	LogWarning("ignored")
}

func TestSetupLoggerFile(t *testing.T) {
	CloseLogger()
	path := filepath.Join(t.TempDir(), "dupefinder.log")

	require.NoError(t, SetupLogger(path))
	DebugLog("hello file")
	CloseLogger()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
	assert.Contains(t, string(data), "Debug Log Closed")
}

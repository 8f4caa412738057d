package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithPrefixBeforeInit(t *testing.T) {
	prev := Logger
	Logger = nil
	t.Cleanup(func() { Logger = prev })

	l := WithPrefix("feed")
	require.NotNil(t, l)
	l.Info("dropped")

	// Package helpers are no-ops without a logger.
	Info("dropped")
	Error("dropped")
}

func TestInitWritesLogFile(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	dir := t.TempDir()
	require.NoError(t, Init(dir, "debug"))

	Debug("debug line", "k", "v")
	WithPrefix("store").Warn("warn line")
	Close()

	entries, err := os.ReadDir(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "versefeed-"))

	data, err := os.ReadFile(filepath.Join(dir, "logs", entries[0].Name()))
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "versefeed started")
	assert.Contains(t, out, "debug line")
	assert.Contains(t, out, "store: warn line")
}

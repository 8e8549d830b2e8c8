package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionLogRetainsFiveMostRecent(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		l, err := NewSessionLog(base.Add(time.Duration(i) * time.Minute))
		require.NoError(t, err)
		require.NoError(t, l.Close())
	}

	entries, err := os.ReadDir(filepath.Join(dir, sessionLogDir))
	require.NoError(t, err)
	assert.Len(t, entries, maxRetainedLogs)
}

func TestSessionLogLineFormat(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	l, err := NewSessionLog(time.Now())
	require.NoError(t, err)
	l.Info("hello")
	require.NoError(t, l.Close())

	entries, err := os.ReadDir(filepath.Join(dir, sessionLogDir))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(dir, sessionLogDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "s] hello")
}

package db

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGarbage(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	body := []byte(strings.Repeat("not a database ", 64))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), body, 0o644))
	return dir
}

func TestOpen_keeps_ping_error(t *testing.T) {
	_, err := Open(writeGarbage(t), DefaultOpenOptions())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping failed after 5 attempts")
	assert.Contains(t, err.Error(), "file is not a database")
}

func TestOpen_permanent_error_stops_retrying(t *testing.T) {
	calls := 0
	opts := DefaultOpenOptions()
	opts.Permanent = func(error) bool {
		calls++
		return true
	}

	_, err := Open(writeGarbage(t), opts)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.NotContains(t, err.Error(), "ping failed after")
	assert.Contains(t, err.Error(), "file is not a database")
}

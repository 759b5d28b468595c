package stores

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whimsicalfrog/frogshop/internal/data/db"
)

func zerologNop() zerolog.Logger { return zerolog.Nop() }

func TestIsCorruptionError(t *testing.T) {
	assert.False(t, IsCorruptionError(nil))
	assert.False(t, IsCorruptionError(assert.AnError))
	assert.True(t, IsCorruptionError(errString("file is not a database")))
	assert.True(t, IsCorruptionError(fmt.Errorf("migrate: %w", errString("database disk image is malformed"))))
}

func TestRecoverFromCorruption(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, db.FileName)
	require.NoError(t, os.WriteFile(dbPath, []byte("garbage"), 0o644))
	require.NoError(t, os.WriteFile(dbPath+"-wal", []byte("wal"), 0o644))

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	backup, err := RecoverFromCorruption(dir, now)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, db.FileName+".corrupt.20260301-120000"), backup)
	assert.NoFileExists(t, dbPath)
	assert.NoFileExists(t, dbPath+"-wal")
	assert.FileExists(t, backup)
	assert.FileExists(t, backup+"-wal")

	database, err := db.Open(dir, db.DefaultOpenOptions())
	require.NoError(t, err)
	require.NoError(t, database.Close())
}

func TestRecoverFromCorruption_removes_unmovable_journal(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, db.FileName)
	require.NoError(t, os.WriteFile(dbPath, []byte("garbage"), 0o644))
	require.NoError(t, os.WriteFile(dbPath+"-shm", []byte("shm"), 0o644))

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	backup := dbPath + ".corrupt.20260301-120000"
	// a directory at the target makes the rename fail
	require.NoError(t, os.MkdirAll(filepath.Join(backup+"-shm", "x"), 0o755))

	_, err := RecoverFromCorruption(dir, now)
	require.NoError(t, err)
	assert.NoFileExists(t, dbPath+"-shm")
}

func TestRecoverFromCorruption_missing_file(t *testing.T) {
	_, err := RecoverFromCorruption(t.TempDir(), time.Now())
	assert.NoError(t, err)
}

type errString string

func (e errString) Error() string { return string(e) }

package stores

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/whimsicalfrog/frogshop/internal/data/db"
)

var corruptCodes = []int{
	sqlite3.SQLITE_CORRUPT,
	sqlite3.SQLITE_NOTADB,
	sqlite3.SQLITE_CANTOPEN,
}

// Some corruption surfaces during open or migration as a plain wrapped
// message rather than a typed sqlite error.
var corruptMessages = []string{
	"database disk image is malformed",
	"file is not a database",
}

// IsCorruptionError reports whether err means the database file is unusable.
func IsCorruptionError(err error) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		return slices.Contains(corruptCodes, se.Code()&0xff)
	}
	msg := err.Error()
	return slices.ContainsFunc(corruptMessages, func(s string) bool { return strings.Contains(msg, s) })
}

// RecoverFromCorruption renames the database in dataDir, with its -wal and
// -shm files, to <name>.corrupt.<timestamp> and returns the new path. A
// missing database is not an error.
func RecoverFromCorruption(dataDir string, now time.Time) (string, error) {
	src := filepath.Join(dataDir, db.FileName)
	dst := src + ".corrupt." + now.Format("20060102-150405")

	for _, suffix := range []string{"", "-wal", "-shm"} {
		err := os.Rename(src+suffix, dst+suffix)
		switch {
		case err == nil, errors.Is(err, os.ErrNotExist):
		case suffix == "":
			return "", fmt.Errorf("move corrupted database aside: %w", err)
		default:
			// a stale journal must not be replayed against the fresh file
			if rmErr := os.Remove(src + suffix); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				return "", fmt.Errorf("remove %s journal: %w", suffix, err)
			}
		}
	}
	return dst, nil
}

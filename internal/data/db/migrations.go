package db

import (
	"cmp"
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// schemaMigration is one numbered schema change. Files are named
// NNNN_name.up.sql and NNNN_name.down.sql.
type schemaMigration struct {
	version int
	name    string
	up      string
	down    string
}

type migrationFile struct {
	version int
	name    string
	up      bool
}

func parseMigrationFile(filename string) (migrationFile, error) {
	var f migrationFile

	base, ok := strings.CutSuffix(filename, ".up.sql")
	if ok {
		f.up = true
	} else if base, ok = strings.CutSuffix(filename, ".down.sql"); !ok {
		return f, errors.New("want a .up.sql or .down.sql suffix")
	}

	num, name, ok := strings.Cut(base, "_")
	if !ok || name == "" {
		return f, errors.New("want NNNN_name")
	}

	v, err := strconv.Atoi(num)
	switch {
	case err != nil:
		return f, fmt.Errorf("version %q: %w", num, err)
	case v < 1:
		return f, fmt.Errorf("version %d is not positive", v)
	}

	f.version, f.name = v, name
	return f, nil
}

// readMigrations loads every migration under dir, ordered by version. Each
// version needs exactly one up and one down file.
func readMigrations(fsys fs.FS, dir string) ([]schemaMigration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := map[int]*schemaMigration{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		f, err := parseMigrationFile(e.Name())
		if err != nil {
			return nil, fmt.Errorf("migration file %s: %w", e.Name(), err)
		}
		body, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}

		m := byVersion[f.version]
		if m == nil {
			m = &schemaMigration{version: f.version, name: f.name}
			byVersion[f.version] = m
		}

		slot := &m.down
		if f.up {
			slot = &m.up
		}
		if *slot != "" {
			return nil, fmt.Errorf("migration %04d: duplicate %s", f.version, e.Name())
		}
		*slot = string(body)
	}

	out := make([]schemaMigration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.up == "" || m.down == "" {
			return nil, fmt.Errorf("migration %04d (%s): needs both up and down files", m.version, m.name)
		}
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b schemaMigration) int { return cmp.Compare(a.version, b.version) })
	return out, nil
}

func loadMigrations() ([]schemaMigration, error) {
	return readMigrations(embeddedMigrations, "migrations")
}

type migrator struct {
	conn       *sql.DB
	logger     zerolog.Logger
	migrations []schemaMigration
}

func newMigrator(ctx context.Context, conn *sql.DB, logger zerolog.Logger) (*migrator, error) {
	migrations, err := loadMigrations()
	if err != nil {
		return nil, err
	}
	_, err = conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at INTEGER NOT NULL
		)`)
	if err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}
	return &migrator{conn: conn, logger: logger, migrations: migrations}, nil
}

func (mg *migrator) applied(ctx context.Context) (map[int]bool, error) {
	rows, err := mg.conn.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	done := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		done[v] = true
	}
	return done, rows.Err()
}

// exec runs a migration body and its bookkeeping statement atomically.
func (mg *migrator) exec(ctx context.Context, body, record string, args ...any) error {
	tx, err := mg.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, record, args...); err != nil {
		return err
	}
	return tx.Commit()
}

func (mg *migrator) up(ctx context.Context) error {
	done, err := mg.applied(ctx)
	if err != nil {
		return err
	}
	for _, m := range mg.migrations {
		if done[m.version] {
			continue
		}
		mg.logger.Info().Int("version", m.version).Str("name", m.name).Msg("migrating up")
		err := mg.exec(ctx, m.up,
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
			m.version, m.name, time.Now().UnixNano())
		if err != nil {
			return fmt.Errorf("migration %04d_%s: %w", m.version, m.name, err)
		}
	}
	return nil
}

func (mg *migrator) down(ctx context.Context, n int) error {
	done, err := mg.applied(ctx)
	if err != nil {
		return err
	}

	var revert []schemaMigration
	for _, m := range slices.Backward(mg.migrations) {
		if done[m.version] {
			revert = append(revert, m)
		}
	}
	if n > len(revert) {
		return fmt.Errorf("cannot revert %d migrations: %d applied", n, len(revert))
	}

	for _, m := range revert[:n] {
		mg.logger.Info().Int("version", m.version).Str("name", m.name).Msg("migrating down")
		err := mg.exec(ctx, m.down, "DELETE FROM schema_migrations WHERE version = ?", m.version)
		if err != nil {
			return fmt.Errorf("revert %04d_%s: %w", m.version, m.name, err)
		}
	}
	return nil
}

func migrateUp(ctx context.Context, conn *sql.DB, logger zerolog.Logger) error {
	mg, err := newMigrator(ctx, conn, logger)
	if err != nil {
		return err
	}
	return mg.up(ctx)
}

// MigrateDown reverts the n most recently applied migrations, newest first.
func MigrateDown(ctx context.Context, conn *sql.DB, n int, logger zerolog.Logger) error {
	if n < 1 {
		return fmt.Errorf("revert count must be positive, got %d", n)
	}
	mg, err := newMigrator(ctx, conn, logger)
	if err != nil {
		return err
	}
	return mg.down(ctx, n)
}

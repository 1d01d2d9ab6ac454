package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// runMigrations applies any pending schema migrations to conn.
func runMigrations(conn *sql.DB) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	drv, err := newMigrationDriver(conn)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", drv)
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// migrationDriver adapts the wasm-backed sqlite connection to the
// golang-migrate database.Driver interface. The sqlite drivers bundled
// with golang-migrate register their own database/sql drivers, which
// collide with the ncruces driver already registered as "sqlite3".
type migrationDriver struct {
	conn   *sql.DB
	locked atomic.Bool
}

var _ database.Driver = (*migrationDriver)(nil)

// newMigrationDriver wraps conn and ensures the version table exists.
func newMigrationDriver(conn *sql.DB) (*migrationDriver, error) {
	_, err := conn.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER NOT NULL, dirty INTEGER NOT NULL)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return &migrationDriver{conn: conn}, nil
}

// Open is unsupported; the driver is always constructed around an
// existing connection.
func (d *migrationDriver) Open(string) (database.Driver, error) {
	return nil, errors.New("migration driver must be constructed from an open connection")
}

// Close is a no-op; the connection is owned by the DB struct.
func (d *migrationDriver) Close() error {
	return nil
}

// Lock takes an in-process advisory lock. Cross-process exclusion comes
// from sqlite itself via the busy timeout.
func (d *migrationDriver) Lock() error {
	if !d.locked.CompareAndSwap(false, true) {
		return database.ErrLocked
	}
	return nil
}

// Unlock releases the advisory lock.
func (d *migrationDriver) Unlock() error {
	if !d.locked.CompareAndSwap(true, false) {
		return database.ErrNotLocked
	}
	return nil
}

// Run executes a single migration file.
func (d *migrationDriver) Run(migration io.Reader) error {
	stmts, err := io.ReadAll(migration)
	if err != nil {
		return fmt.Errorf("failed to read migration: %w", err)
	}
	if _, err := d.conn.Exec(string(stmts)); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}
	return nil
}

// SetVersion records the current schema version.
func (d *migrationDriver) SetVersion(version int, dirty bool) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin version transaction: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM schema_migrations`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to clear schema version: %w", err)
	}
	if version >= 0 || (version == database.NilVersion && dirty) {
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version, dirty) VALUES (?, ?)`, version, dirty); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema version: %w", err)
	}
	return nil
}

// Version reports the current schema version, or NilVersion for a fresh
// database.
func (d *migrationDriver) Version() (int, bool, error) {
	var version int
	var dirty bool
	err := d.conn.QueryRow(`SELECT version, dirty FROM schema_migrations LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return database.NilVersion, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, dirty, nil
}

// Drop removes every table except sqlite internals.
func (d *migrationDriver) Drop() error {
	rows, err := d.conn.Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating tables: %w", err)
	}

	for _, name := range tables {
		if _, err := d.conn.Exec(`DROP TABLE ` + quoteIdentifier(name)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", name, err)
		}
	}
	return nil
}

// quoteIdentifier quotes a sqlite identifier for use in DDL.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

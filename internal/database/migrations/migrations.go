// Package migrations embeds the display history schema and applies it with
// golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var files embed.FS

// ErrNoVersion is returned by Check for a database that was never migrated.
var ErrNoVersion = errors.New("history database has no schema version (needs migration)")

// Up applies every pending migration. Running it on a current database is a no-op.
func Up(db *sql.DB) error {
	m, err := open(db)
	if err != nil {
		return err
	}
	// Closing m would close db, which belongs to the caller.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying history migrations: %w", err)
	}
	return nil
}

// Check reports whether db is exactly at the newest embedded schema version.
func Check(db *sql.DB) error {
	m, err := open(db)
	if err != nil {
		return err
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return ErrNoVersion
	case err != nil:
		return fmt.Errorf("reading history schema version: %w", err)
	case dirty:
		return fmt.Errorf("history schema is dirty at version %d", version)
	}

	latest, err := Latest()
	if err != nil {
		return err
	}
	if version != latest {
		return fmt.Errorf("history schema is at version %d, binary expects %d", version, latest)
	}
	return nil
}

// Latest returns the newest schema version embedded in the binary.
func Latest() (uint, error) {
	src, err := newSource()
	if err != nil {
		return 0, err
	}
	defer src.Close()

	version, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("reading first migration: %w", err)
	}
	for {
		next, err := src.Next(version)
		if err != nil {
			// fs.ErrNotExist past the last file
			return version, nil
		}
		version = next
	}
}

func newSource() (source.Driver, error) {
	src, err := iofs.New(files, "files")
	if err != nil {
		return nil, fmt.Errorf("loading embedded migrations: %w", err)
	}
	return src, nil
}

func open(db *sql.DB) (*migrate.Migrate, error) {
	src, err := newSource()
	if err != nil {
		return nil, err
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("creating sqlite migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("creating migrator: %w", err)
	}
	return m, nil
}

package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const migrationsTable = "schema_migrations"

// ErrDirtySchema means an earlier migration stopped halfway; the database
// has to be repaired by hand before the service can start.
var ErrDirtySchema = errors.New("database schema is dirty")

// SchemaStatus reports the schema version before and after RunMigrations.
type SchemaStatus struct {
	Previous uint
	Version  uint
}

func (s SchemaStatus) Upgraded() bool {
	return s.Version != s.Previous
}

// RunMigrations brings the vote schema up to date.
func RunMigrations(db *DB) (SchemaStatus, error) {
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return SchemaStatus{}, fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return SchemaStatus{}, fmt.Errorf("failed to create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return SchemaStatus{}, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	var status SchemaStatus
	if status.Previous, err = schemaVersion(m); err != nil {
		return status, err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return status, fmt.Errorf("failed to run migrations: %w", err)
	}

	if status.Version, err = schemaVersion(m); err != nil {
		return status, err
	}

	return status, nil
}

func schemaVersion(m *migrate.Migrate) (uint, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("%w at version %d", ErrDirtySchema, version)
	}
	return version, nil
}

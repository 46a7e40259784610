// internal/database/migration.go
package database

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"digitizer-service/internal/config"
)

// MigrationsTable keeps the capture schema version apart from other
// services sharing the database
const MigrationsTable = "digitizer_schema_migrations"

// Migrator applies the capture schema
type Migrator struct {
	db     *DB
	logger *zap.Logger
	source string
}

// NewMigrator creates a migrator reading cfg.MigrationsPath, or ./migrations
func NewMigrator(db *DB, logger *zap.Logger, cfg *config.DatabaseConfig) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{
		db:     db,
		logger: logger.With(zap.String("component", "migrator")),
		source: sourceURL(cfg.MigrationsPath),
	}
}

// sourceURL turns a directory into a file:// source URL
func sourceURL(dir string) string {
	if dir == "" {
		dir = "migrations"
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return "file://" + filepath.ToSlash(dir)
}

// Up applies every pending migration
func (m *Migrator) Up() error {
	return m.run("up", func(mg *migrate.Migrate) error { return mg.Up() })
}

// Down rolls back the most recent migration only
func (m *Migrator) Down() error {
	return m.run("down", func(mg *migrate.Migrate) error { return mg.Steps(-1) })
}

// Version returns the applied schema version and whether it is dirty
func (m *Migrator) Version() (uint, bool, error) {
	mg, err := m.open()
	if err != nil {
		return 0, false, err
	}
	defer mg.Close()

	version, dirty, err := mg.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, dirty, nil
}

func (m *Migrator) run(direction string, step func(*migrate.Migrate) error) error {
	mg, err := m.open()
	if err != nil {
		return err
	}
	defer mg.Close()

	from, _, _ := mg.Version()
	if err := step(mg); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("Schema already current", zap.Uint("version", from))
			return nil
		}
		return fmt.Errorf("migration %s failed: %w", direction, err)
	}

	to, _, _ := mg.Version()
	m.logger.Info("Schema migrated",
		zap.String("direction", direction),
		zap.Uint("from", from),
		zap.Uint("to", to),
	)
	return nil
}

func (m *Migrator) open() (*migrate.Migrate, error) {
	instance, err := postgres.WithInstance(m.db.DB, &postgres.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	mg, err := migrate.NewWithDatabaseInstance(m.source, "postgres", instance)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator for %s: %w", m.source, err)
	}
	return mg, nil
}

package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationStatus is the schema version recorded by golang-migrate
type MigrationStatus struct {
	Version uint
	Dirty   bool
	// Applied is false when no migration has run yet
	Applied bool
}

// Migrator applies the embedded schema migrations
type Migrator struct {
	databaseURL string
	logger      *logrus.Entry
}

// NewMigrator creates a migrator for the given postgres:// URL
func NewMigrator(databaseURL string, logger *logrus.Logger) *Migrator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Migrator{
		databaseURL: databaseURL,
		logger:      logger.WithField("component", "migrator"),
	}
}

// Up runs all pending migrations
func (m *Migrator) Up() (MigrationStatus, error) {
	mig, err := m.open()
	if err != nil {
		return MigrationStatus{}, err
	}
	defer mig.Close()

	err = mig.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return MigrationStatus{}, fmt.Errorf("failed to run migrations: %w", err)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("No new migrations to apply")
	}

	status, err := version(mig)
	if err != nil {
		return MigrationStatus{}, err
	}
	m.logger.WithField("version", status.Version).Info("Schema is up to date")
	return status, nil
}

// Down rolls back the given number of migrations
func (m *Migrator) Down(steps int) (MigrationStatus, error) {
	if steps <= 0 {
		return MigrationStatus{}, fmt.Errorf("steps must be positive, got %d", steps)
	}

	mig, err := m.open()
	if err != nil {
		return MigrationStatus{}, err
	}
	defer mig.Close()

	err = mig.Steps(-steps)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return MigrationStatus{}, fmt.Errorf("failed to rollback migrations: %w", err)
	}

	status, err := version(mig)
	if err != nil {
		return MigrationStatus{}, err
	}
	m.logger.WithFields(logrus.Fields{"steps": steps, "version": status.Version}).Info("Rolled back migrations")
	return status, nil
}

// Status reports the current schema version
func (m *Migrator) Status() (MigrationStatus, error) {
	mig, err := m.open()
	if err != nil {
		return MigrationStatus{}, err
	}
	defer mig.Close()

	return version(mig)
}

func version(mig *migrate.Migrate) (MigrationStatus, error) {
	v, dirty, err := mig.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return MigrationStatus{}, nil
	}
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("failed to get migration version: %w", err)
	}
	return MigrationStatus{Version: v, Dirty: dirty, Applied: true}, nil
}

func (m *Migrator) open() (*migrate.Migrate, error) {
	config, err := pgxpool.ParseConfig(m.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	db := stdlib.OpenDB(*config.ConnConfig)

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	mig, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return mig, nil
}

package database

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/euromillions/internal/config"
)

// Initialize creates a database connection pool and brings the schema up to
// date when auto_migrate is set. Without it, a missing schema is only reported.
func Initialize(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*DB, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	migrator := NewMigrator(cfg.GetDatabaseDSN(), logger)
	if cfg.Database.AutoMigrate {
		if _, err := migrator.Up(); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	}

	status, err := migrator.Status()
	if err != nil {
		logger.WithError(err).Warn("Could not read schema version")
		return db, nil
	}
	if !status.Applied {
		logger.Warn("No migrations have been applied. Run `ingestion migrate up`.")
	}
	if status.Dirty {
		logger.WithField("version", status.Version).Warn("Schema is dirty; a previous migration failed")
	}

	return db, nil
}

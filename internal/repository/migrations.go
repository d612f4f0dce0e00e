package repository

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// MigrationsSource is where the migration files are read from, relative to
// the working directory of the binary.
const MigrationsSource = "file://internal/repository/migrations"

// RunMigrations brings the result archive schema up to date. A database left
// dirty by an interrupted run is forced back one version and migrated again.
func RunMigrations(databaseURL string, logger *zap.Logger) error {
	m, err := migrate.New(MigrationsSource, databaseURL)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}
	defer m.Close()

	err = m.Up()
	var dirtyErr migrate.ErrDirty
	switch {
	case err == nil, errors.Is(err, migrate.ErrNoChange):
	case errors.As(err, &dirtyErr):
		logger.Warn("database is dirty, forcing previous version", zap.Int("version", dirtyErr.Version))
		if err := recoverDirty(m, dirtyErr.Version); err != nil {
			return err
		}
	default:
		return fmt.Errorf("run migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("get current migration version: %w", err)
	}
	logger.Info("database migrations applied", zap.Uint("version", version))

	return nil
}

func recoverDirty(m *migrate.Migrate, version int) error {
	forceVersion := version - 1
	if forceVersion < 1 {
		forceVersion = database.NilVersion
	}
	if err := m.Force(forceVersion); err != nil {
		return fmt.Errorf("force clean migration version %d: %w", forceVersion, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rerun migrations after dirty state: %w", err)
	}
	return nil
}

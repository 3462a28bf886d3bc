package persistence

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // PostgreSQL driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // File source driver
)

const fileSourcePrefix = "file://"

// migrationSource accepts either a bare directory or a file:// URL
func migrationSource(path string) string {
	if strings.HasPrefix(path, fileSourcePrefix) {
		return path
	}
	return fileSourcePrefix + path
}

// RunMigrations brings the ledger schema up to the newest migration in migrationsPath.
// A dirty schema is reported rather than forced; it needs an operator.
func RunMigrations(logger *slog.Logger, databaseURL string, migrationsPath string) error {
	if migrationsPath == "" {
		return errors.New("migrations path cannot be empty")
	}
	if databaseURL == "" {
		return errors.New("database URL cannot be empty")
	}

	m, err := migrate.New(migrationSource(migrationsPath), databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			logger.Warn("Failed to close migrate instance", "source_error", sourceErr, "db_error", dbErr)
		}
	}()

	if _, dirty, verr := m.Version(); verr == nil && dirty {
		return errors.New("ledger schema is dirty, fix the failed migration before starting")
	}

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("Ledger schema up to date")
	case err != nil:
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	if version, _, err := m.Version(); err == nil {
		logger.Info("Ledger schema version", "version", version)
	}
	return nil
}

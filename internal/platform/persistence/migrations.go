package persistence

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // PostgreSQL driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // File source driver
)

// ErrDirtySchema means an earlier migration stopped half way. The ledger
// refuses to start on it because the processor, transaction and outbox
// tables may disagree.
var ErrDirtySchema = errors.New("ledger schema is dirty")

// RunMigrations brings the ledger schema up to date and returns the version
// it ends at. Every binary calls it on start; the postgres driver serialises
// concurrent runs with an advisory lock.
func RunMigrations(logger *slog.Logger, databaseURL string, migrationsPath string) (uint, error) {
	if migrationsPath == "" {
		return 0, errors.New("migrations path cannot be empty")
	}
	if databaseURL == "" {
		return 0, errors.New("database URL cannot be empty")
	}

	sourceURL, err := migrationSourceURL(migrationsPath)
	if err != nil {
		return 0, err
	}

	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		return 0, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		sourceErr, dbErr := m.Close()
		if sourceErr != nil || dbErr != nil {
			logger.Warn("Failed to close migrator", "source_error", sourceErr, "database_error", dbErr)
		}
	}()

	err = m.Up()
	var dirty migrate.ErrDirty
	switch {
	case errors.As(err, &dirty):
		return 0, fmt.Errorf("%w at version %d, fix it and force the version before restarting", ErrDirtySchema, dirty.Version)
	case errors.Is(err, migrate.ErrNoChange):
		logger.Debug("Ledger schema already current")
	case err != nil:
		return 0, fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.Info("Ledger schema ready", "version", version, "source", sourceURL)
	return version, nil
}

// migrationSourceURL turns a directory into a file:// source URL. Paths
// that already carry the scheme are kept as given.
func migrationSourceURL(migrationsPath string) (string, error) {
	if strings.HasPrefix(migrationsPath, "file://") {
		return migrationsPath, nil
	}
	if strings.Contains(migrationsPath, "://") {
		return "", fmt.Errorf("unsupported migrations source %q, only local directories are read", migrationsPath)
	}
	return "file://" + filepath.ToSlash(filepath.Clean(migrationsPath)), nil
}

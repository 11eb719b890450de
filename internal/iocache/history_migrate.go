package iocache

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/huangsam/doxycov/schema"
)

//go:embed migrations
var migrationsFS embed.FS

// migrationDirs maps each backend to its dialect's migration directory.
var migrationDirs = map[schema.DatabaseBackend]string{
	schema.SQLiteBackend:     "migrations/sqlite",
	schema.MySQLBackend:      "migrations/mysql",
	schema.PostgreSQLBackend: "migrations/postgres",
}

// MigrateHistory runs database migrations for the history store and reports progress on w.
// - If targetVersion < 0, it migrates to the latest version.
// - If targetVersion == 0, it rolls back all migrations (to initial state).
// - If targetVersion > 0, it migrates to the specified version.
func MigrateHistory(w io.Writer, backend schema.DatabaseBackend, connStr string, targetVersion int) error {
	dir, ok := migrationDirs[backend]
	if !ok {
		if backend == schema.NoneBackend {
			return fmt.Errorf("migrations are not supported for NoneBackend")
		}
		return fmt.Errorf("unsupported backend: %s", backend)
	}

	db, err := openMigrationDB(backend, connStr)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	var driver database.Driver
	switch backend {
	case schema.SQLiteBackend:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case schema.MySQLBackend:
		driver, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	case schema.PostgreSQLBackend:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	}
	if err != nil {
		return fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
	}

	migrationFS, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("failed to access migrations directory: %w", err)
	}
	sourceDriver, err := iofs.New(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "doxycov", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in a dirty state at version %d. Please fix manually or force version", currentVersion)
	}

	switch {
	case targetVersion < 0:
		err = m.Up()
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to migrate to latest version: %w", err)
		}
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Fprintln(w, "No migration needed. Database is already at the latest version.")
		} else {
			newVersion, _, _ := m.Version()
			fmt.Fprintf(w, "Successfully migrated from version %d to version %d\n", currentVersion, newVersion)
		}

	case targetVersion == 0:
		err = m.Down()
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to roll back to version 0: %w", err)
		}
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Fprintln(w, "No migration needed. Database is already at version 0")
		} else {
			fmt.Fprintf(w, "Successfully rolled back from version %d to version 0\n", currentVersion)
		}

	default:
		err = m.Migrate(uint(targetVersion))
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to migrate to version %d: %w", targetVersion, err)
		}
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Fprintf(w, "No migration needed. Database is already at version %d\n", targetVersion)
		} else {
			fmt.Fprintf(w, "Successfully migrated from version %d to version %d\n", currentVersion, targetVersion)
		}
	}

	return nil
}

// openMigrationDB is openDB plus the multi-statement support MySQL needs
// to apply a migration file in one Exec.
func openMigrationDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	if backend != schema.MySQLBackend {
		return openDB(backend, connStr)
	}
	cfg, err := mysql.ParseDSN(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse MySQL connection string: %w", err)
	}
	cfg.MultiStatements = true
	cfg.ParseTime = true
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}
	return db, nil
}

package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/huangsam/doxycov/internal/contract"
	"github.com/huangsam/doxycov/schema"
)

// Table names for run history.
const (
	runsTable         = "doxycov_runs"
	fileCoverageTable = "doxycov_file_coverage"
)

// historyTables lists the tables in dependency order.
var historyTables = []string{runsTable, fileCoverageTable}

// Global Manager instance for main logic.
var (
	Manager   = &HistoryStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetHistoryDBFilePath returns the path to the SQLite DB file for history storage.
func GetHistoryDBFilePath() string {
	return contract.GetHistoryDBFilePath()
}

// InitHistory initializes the global manager. A NoneBackend leaves history disabled.
func InitHistory(backend schema.DatabaseBackend, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		if backend == "" || backend == schema.NoneBackend {
			return
		}
		store, err := NewHistoryStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize history store: %w", err)
			return
		}

		Manager.Lock()
		Manager.history = store
		Manager.Unlock()
	})

	return initErr
}

// CloseHistory should be called on application shutdown.
func CloseHistory() {
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.history != nil {
			_ = Manager.history.Close()
		}
	})
}

// ClearHistory removes recorded runs for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the history tables.
// For NoneBackend, it does nothing.
func ClearHistory(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		// Drop child tables before parents
		for i := len(historyTables) - 1; i >= 0; i-- {
			if err := dropSQLTable(backend, connStr, historyTables[i]); err != nil {
				return err
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported history backend for clearing: %s", backend)
	}
}

// dropSQLTable connects to the SQL database and drops the table if it exists.
func dropSQLTable(backend schema.DatabaseBackend, connStr, tableName string) error {
	driverName := driverFor(backend)
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(tableName, backend))
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}
	return nil
}

// driverFor maps a backend to its database/sql driver name.
func driverFor(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return "mysql"
	case schema.PostgreSQLBackend:
		return "pgx"
	default:
		return "sqlite"
	}
}

// quoteTableName quotes a table name for the backend's SQL dialect.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	if backend == schema.MySQLBackend {
		return fmt.Sprintf("`%s`", name)
	}
	return fmt.Sprintf("%q", name)
}

// formatTime converts a time.Time to the appropriate format for the backend.
// SQLite has no native timestamp type, so times are stored as RFC3339Nano text.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if backend == schema.SQLiteBackend {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t
}

// parseTime is the inverse of formatTime for SQLite text columns.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// placeholders returns n bind parameters in the backend's style.
func placeholders(backend schema.DatabaseBackend, n int) []string {
	out := make([]string, n)
	for i := range out {
		if backend == schema.PostgreSQLBackend {
			out[i] = fmt.Sprintf("$%d", i+1)
		} else {
			out[i] = "?"
		}
	}
	return out
}

package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/doxycov/internal/contract"
	"github.com/huangsam/doxycov/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// HistoryStoreImpl implements the HistoryStore interface over database/sql.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore opens the backend, verifies the connection and ensures the tables exist.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is writable."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// openDB opens a handle for the backend without connecting.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetHistoryDBFilePath()
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, nil

	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse MySQL connection string: %w. Expected format: user:password@tcp(host:port)/dbname", err)
		}
		// DATETIME columns must scan into time.Time
		cfg.ParseTime = true
		db, err := sql.Open("mysql", cfg.FormatDSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w", err)
		}
		return db, nil

	case schema.PostgreSQLBackend:
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... dbname=...", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}

// createHistoryTables creates the history tables when missing.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{fileCoverageTable, getCreateFileCoverageQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for doxycov_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_uuid CHAR(36) NOT NULL,
				input_dir VARCHAR(1024) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_files INT NOT NULL DEFAULT 0,
				total_documented INT NOT NULL DEFAULT 0,
				total_undocumented INT NOT NULL DEFAULT 0,
				total_percent INT NOT NULL DEFAULT 0,
				threshold INT NOT NULL DEFAULT 0,
				verdict INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				run_uuid TEXT NOT NULL,
				input_dir TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_files INT NOT NULL DEFAULT 0,
				total_documented INT NOT NULL DEFAULT 0,
				total_undocumented INT NOT NULL DEFAULT 0,
				total_percent INT NOT NULL DEFAULT 0,
				threshold INT NOT NULL DEFAULT 0,
				verdict INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_uuid TEXT NOT NULL,
				input_dir TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_files INTEGER NOT NULL DEFAULT 0,
				total_documented INTEGER NOT NULL DEFAULT 0,
				total_undocumented INTEGER NOT NULL DEFAULT 0,
				total_percent INTEGER NOT NULL DEFAULT 0,
				threshold INTEGER NOT NULL DEFAULT 0,
				verdict INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateFileCoverageQuery returns the CREATE TABLE query for doxycov_file_coverage.
func getCreateFileCoverageQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(fileCoverageTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				file_path VARCHAR(512) NOT NULL,
				percent DOUBLE NOT NULL,
				documented INT NOT NULL,
				total INT NOT NULL,
				undocumented INT NOT NULL,
				PRIMARY KEY (run_id, file_path)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				file_path TEXT NOT NULL,
				percent DOUBLE PRECISION NOT NULL,
				documented INT NOT NULL,
				total INT NOT NULL,
				undocumented INT NOT NULL,
				PRIMARY KEY (run_id, file_path)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				file_path TEXT NOT NULL,
				percent REAL NOT NULL,
				documented INTEGER NOT NULL,
				total INTEGER NOT NULL,
				undocumented INTEGER NOT NULL,
				PRIMARY KEY (run_id, file_path)
			);
		`, quotedTableName)
	}
}

// disabled reports whether the store is a no-op.
func (hs *HistoryStoreImpl) disabled() bool {
	return hs.backend == schema.NoneBackend || hs.db == nil
}

// BeginRun inserts a new run and returns its ID. A disabled store returns 0.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, runUUID string, inputDir string, configParams map[string]any) (int64, error) {
	if hs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, hs.backend)
	args := []any{runUUID, inputDir, formatTime(startTime, hs.backend), string(configJSON)}

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, input_dir, start_time, config_params) VALUES ($1, $2, $3, $4) RETURNING run_id`, quotedTableName)
		err = hs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, input_dir, start_time, config_params) VALUES (?, ?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = hs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// RecordFileCoverage stores the coverage of one file for a run.
func (hs *HistoryStoreImpl) RecordFileCoverage(runID int64, coverage schema.FileCoverage) error {
	if hs.disabled() {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, file_path, percent, documented, total, undocumented) VALUES (%s)`,
		quoteTableName(fileCoverageTable, hs.backend), strings.Join(placeholders(hs.backend, 6), ", "))
	_, err := hs.db.Exec(query,
		runID, coverage.Path, coverage.Percent, coverage.Documented, coverage.Total, coverage.Total-coverage.Documented)
	if err != nil {
		return fmt.Errorf("failed to insert file coverage for %s: %w", coverage.Path, err)
	}
	return nil
}

// EndRun stores the summary and duration of a finished run.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error {
	if hs.disabled() {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, hs.backend)
	ph := placeholders(hs.backend, 1)
	row := hs.db.QueryRow(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, ph[0]), runID)

	startTime, err := hs.scanTime(row)
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	durationMs := endTime.Sub(startTime).Milliseconds()

	ph = placeholders(hs.backend, 9)
	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_files = %s, total_documented = %s,
		total_undocumented = %s, total_percent = %s, threshold = %s, verdict = %s WHERE run_id = %s`,
		quotedTableName, ph[0], ph[1], ph[2], ph[3], ph[4], ph[5], ph[6], ph[7], ph[8])
	args := []any{
		formatTime(endTime, hs.backend), durationMs, summary.TotalFiles, summary.TotalDocumented,
		summary.TotalUndocumented, summary.TotalPercent, summary.Threshold, summary.Verdict, runID,
	}
	if _, err := hs.db.Exec(updateQuery, args...); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// scanTime reads one timestamp column, whatever the backend stores it as.
func (hs *HistoryStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	if hs.backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(&s); err != nil {
			return time.Time{}, err
		}
		return parseTime(s)
	}
	var t time.Time
	err := row.Scan(&t)
	return t, err
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.disabled() {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		lastQuery := fmt.Sprintf("SELECT run_id, total_percent FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns)
		if err := hs.db.QueryRow(lastQuery).Scan(&status.LastRunID, &status.LastPercent); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}

		var err error
		status.LastRunTime, err = hs.scanTime(hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns)))
		if err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		status.OldestRunTime, err = hs.scanTime(hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns)))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
	}

	for _, table := range historyTables {
		var count int64
		if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves every recorded run ordered by ID.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.HistoryRunRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, run_uuid, input_dir, start_time, end_time, run_duration_ms,
		total_files, total_documented, total_undocumented, total_percent, threshold, verdict, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, hs.backend))

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.HistoryRunRecord
	for rows.Next() {
		var record schema.HistoryRunRecord
		tail := []any{
			&record.RunDurationMs, &record.TotalFiles, &record.TotalDocumented, &record.TotalUndocumented,
			&record.TotalPercent, &record.Threshold, &record.Verdict, &record.ConfigParams,
		}

		switch hs.backend {
		case schema.SQLiteBackend:
			var startStr string
			var endStr *string
			dest := append([]any{&record.RunID, &record.RunUUID, &record.InputDir, &startStr, &endStr}, tail...)
			if err := rows.Scan(dest...); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			if record.StartTime, err = parseTime(startStr); err != nil {
				return nil, err
			}
			if endStr != nil {
				endTime, err := parseTime(*endStr)
				if err != nil {
					return nil, err
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL store native timestamps
			dest := append([]any{&record.RunID, &record.RunUUID, &record.InputDir, &record.StartTime, &record.EndTime}, tail...)
			if err := rows.Scan(dest...); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllFileCoverage retrieves every stored file coverage row.
func (hs *HistoryStoreImpl) GetAllFileCoverage() ([]schema.FileCoverageRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, file_path, percent, documented, total, undocumented
		FROM %s ORDER BY run_id, file_path`, quoteTableName(fileCoverageTable, hs.backend))

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query file coverage: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.FileCoverageRecord
	for rows.Next() {
		var r schema.FileCoverageRecord
		if err := rows.Scan(&r.RunID, &r.FilePath, &r.Percent, &r.Documented, &r.Total, &r.Undocumented); err != nil {
			return nil, fmt.Errorf("failed to scan file coverage: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file coverage: %w", err)
	}
	return results, nil
}

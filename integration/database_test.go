//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestHistoryWithMySQL records coverage runs in a MySQL history store.
func TestHistoryWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "doxycov",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/doxycov", host, port.Port())
	exerciseHistoryBackend(t, "mysql", connStr)
}

// TestHistoryWithPostgres records coverage runs in a PostgreSQL history store.
func TestHistoryWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	exerciseHistoryBackend(t, "postgresql", connStr)
}

// exerciseHistoryBackend runs the history lifecycle against one backend:
// migrate, record two runs, inspect, export, clear.
func exerciseHistoryBackend(t *testing.T, backend, connStr string) {
	t.Helper()
	xmlDir := writeXMLCorpus(t)
	workDir := t.TempDir()
	env := []string{
		"DOXYCOV_HISTORY_BACKEND=" + backend,
		"DOXYCOV_HISTORY_DB_CONNECT=" + connStr,
	}

	// Start from an empty database
	require.Equal(t, 0, runDoxycov(t, workDir, env, "history", "clear").ExitCode)

	migrate := runDoxycov(t, workDir, env, "history", "migrate")
	require.Equal(t, 0, migrate.ExitCode)
	assert.Contains(t, migrate.Stdout, "to version 2")

	require.Equal(t, 23, runDoxycov(t, workDir, env, xmlDir).ExitCode)
	require.Equal(t, 0, runDoxycov(t, workDir, env, "--threshold", "50", xmlDir).ExitCode)

	status := runDoxycov(t, workDir, env, "history", "status")
	require.Equal(t, 0, status.ExitCode)
	assert.Contains(t, status.Stdout, "Connected: true")
	assert.Contains(t, status.Stdout, "Total Runs: 2")

	list := runDoxycov(t, workDir, env, "history", "list", "--output", "json")
	require.Equal(t, 0, list.ExitCode)
	assert.Contains(t, list.Stdout, `"total_percent": 57`)

	export := runDoxycov(t, workDir, env, "history", "export", "--output-file", workDir+"/export")
	require.Equal(t, 0, export.ExitCode)

	require.Equal(t, 0, runDoxycov(t, workDir, env, "history", "clear").ExitCode)
}

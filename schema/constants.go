package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run history.
	DatabaseBackend string
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	TableOut   OutputMode = "table"
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	YAMLOut    OutputMode = "yaml"
	ParquetOut OutputMode = "parquet"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// DirKind is the compound kind that never contributes symbols.
const DirKind = "dir"

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	TableOut:   {},
	CSVOut:     {},
	JSONOut:    {},
	YAMLOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

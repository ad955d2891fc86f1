package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
)

// DatabaseManager defines the interface for database operations
type DatabaseManager interface {
	Connect(ctx context.Context, cfg ConnectionConfig) error
	Close() error
	ListTables(ctx context.Context, schema string) ([]string, error)
	CountRows(ctx context.Context, schema, table string) (int64, error)
	ExportToCSV(ctx context.Context, schema, outputDir string) error
	ReplaceTable(ctx context.Context, schema, table string, rows *RowSet) error
	RestoreFromCSV(ctx context.Context, schema, directory string) (int, error)
	DefaultSchema() string
}

// Dialect hides the SQL and driver differences between database engines.
type Dialect interface {
	Name() string
	DriverName(transport string) (string, error)
	DSN(cfg ConnectionConfig) (string, error)
	QuoteIdentifier(name string) string
	Placeholder(n int) string
	TablesQuery() string
	DefaultSchema(cfg ConnectionConfig) string
	ColumnType(kind ValueKind) string
}

var errNoConnection = errors.New("no database connection")

// Manager runs exports and table replacements over a single connection.
type Manager struct {
	DB      *sql.DB
	Cfg     ConnectionConfig
	Out     io.Writer
	Verbose bool

	dialect Dialect
}

var _ DatabaseManager = (*Manager)(nil)

func newManager(d Dialect) *Manager {
	return &Manager{Out: os.Stdout, dialect: d}
}

// NewManager returns a manager for the named driver.
func NewManager(driver string) (*Manager, error) {
	switch driver {
	case "", "postgres", "postgresql":
		return NewPostgresManager(), nil
	case "mysql":
		return NewMySQLManager(), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", driver)
	}
}

// Dialect returns the SQL dialect of the manager.
func (m *Manager) Dialect() Dialect {
	return m.dialect
}

func (m *Manager) log(format string, args ...interface{}) {
	fmt.Fprintf(m.Out, "["+m.dialect.Name()+"] "+format+"\n", args...)
}

func (m *Manager) logSQL(operation, sql string) {
	if !m.Verbose {
		return
	}
	fmt.Fprintf(m.Out, "[%s] %s:\n%s\n", m.dialect.Name(), operation, sql)
}

// Connect opens the database and verifies it is reachable. The pool is
// limited to one connection.
func (m *Manager) Connect(ctx context.Context, cfg ConnectionConfig) error {
	driverName, err := m.dialect.DriverName(cfg.Transport)
	if err != nil {
		return &ConnectionError{Driver: m.dialect.Name(), Host: cfg.Host, Err: err}
	}
	dsn, err := m.dialect.DSN(cfg)
	if err != nil {
		return &ConnectionError{Driver: m.dialect.Name(), Host: cfg.Host, Err: err}
	}

	m.log("Connecting to %s", cfg)
	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return &ConnectionError{Driver: driverName, Host: cfg.Host, Err: err}
	}
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return &ConnectionError{Driver: driverName, Host: cfg.Host, Err: err}
	}

	m.DB = conn
	m.Cfg = cfg
	return nil
}

func (m *Manager) Close() error {
	if m.DB == nil {
		return nil
	}
	return m.DB.Close()
}

// DefaultSchema is the schema used when none is configured.
func (m *Manager) DefaultSchema() string {
	return m.dialect.DefaultSchema(m.Cfg)
}

func (m *Manager) schemaOrDefault(schema string) string {
	if schema != "" {
		return schema
	}
	return m.DefaultSchema()
}

// qualify returns a quoted, optionally schema-qualified table name.
func (m *Manager) qualify(schema, table string) string {
	if schema == "" {
		return m.dialect.QuoteIdentifier(table)
	}
	return m.dialect.QuoteIdentifier(schema) + "." + m.dialect.QuoteIdentifier(table)
}

package db

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// NewMySQLManager returns a manager for MySQL.
func NewMySQLManager() *Manager {
	return newManager(mysqlDialect{})
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return "mysql" }

func (mysqlDialect) DriverName(transport string) (string, error) {
	if transport != "" && transport != "mysql" {
		return "", fmt.Errorf("unsupported mysql transport: %s", transport)
	}
	return "mysql", nil
}

func (mysqlDialect) DSN(cfg ConnectionConfig) (string, error) {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	mc.DBName = cfg.DBName
	mc.ParseTime = true

	switch cfg.SSLMode {
	case "", "disable":
		mc.TLSConfig = "false"
	case "allow", "prefer":
		mc.TLSConfig = "preferred"
	case "require":
		mc.TLSConfig = "skip-verify"
	case "verify-ca", "verify-full":
		mc.TLSConfig = "true"
	default:
		return "", fmt.Errorf("unsupported sslmode for mysql: %s", cfg.SSLMode)
	}
	return mc.FormatDSN(), nil
}

func (mysqlDialect) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (mysqlDialect) Placeholder(int) string {
	return "?"
}

func (mysqlDialect) TablesQuery() string {
	return `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ?
		AND table_type = 'BASE TABLE'
	`
}

// DefaultSchema is the connected database; MySQL has no separate schema level.
func (mysqlDialect) DefaultSchema(cfg ConnectionConfig) string {
	return cfg.DBName
}

func (mysqlDialect) ColumnType(kind ValueKind) string {
	switch kind {
	case KindInteger:
		return "BIGINT"
	case KindFloat:
		return "DOUBLE"
	case KindBoolean:
		return "BOOLEAN"
	case KindTimestamp:
		return "DATETIME(6)"
	default:
		return "TEXT"
	}
}

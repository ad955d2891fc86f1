package db

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

// NewPostgresManager returns a manager for PostgreSQL.
func NewPostgresManager() *Manager {
	return newManager(postgresDialect{})
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

// DriverName maps a transport to a database/sql driver. "pq" uses lib/pq,
// "pgx" uses the pgx stdlib adapter.
func (postgresDialect) DriverName(transport string) (string, error) {
	switch transport {
	case "", "pq":
		return "postgres", nil
	case "pgx":
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported postgres transport: %s", transport)
	}
}

func (d postgresDialect) DSN(cfg ConnectionConfig) (string, error) {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	switch cfg.Transport {
	case "", "pq":
		u := url.URL{
			Scheme: "postgres",
			Host:   net.JoinHostPort(host, strconv.Itoa(port)),
			Path:   "/" + cfg.DBName,
		}
		if cfg.User != "" {
			if cfg.Password != "" {
				u.User = url.UserPassword(cfg.User, cfg.Password)
			} else {
				u.User = url.User(cfg.User)
			}
		}
		q := url.Values{}
		q.Set("sslmode", sslmode)
		u.RawQuery = q.Encode()
		return u.String(), nil

	case "pgx":
		dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
			quoteDSNValue(host), port, quoteDSNValue(cfg.DBName), quoteDSNValue(sslmode))
		if cfg.User != "" {
			dsn += " user=" + quoteDSNValue(cfg.User)
		}
		if cfg.Password != "" {
			dsn += " password=" + quoteDSNValue(cfg.Password)
		}
		return dsn, nil
	}
	return "", fmt.Errorf("unsupported postgres transport: %s", cfg.Transport)
}

func (postgresDialect) QuoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}

func (postgresDialect) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func (postgresDialect) TablesQuery() string {
	return `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1
		AND table_type = 'BASE TABLE'
	`
}

func (postgresDialect) DefaultSchema(ConnectionConfig) string {
	return "public"
}

func (postgresDialect) ColumnType(kind ValueKind) string {
	switch kind {
	case KindInteger:
		return "BIGINT"
	case KindFloat:
		return "DOUBLE PRECISION"
	case KindBoolean:
		return "BOOLEAN"
	case KindTimestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

package db

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ConnectionConfig holds the parameters needed to reach a database.
type ConnectionConfig struct {
	Driver    string // postgres or mysql
	Transport string // postgres only: pq or pgx
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	SSLMode   string
}

// String describes the connection without the password.
func (c ConnectionConfig) String() string {
	s := fmt.Sprintf("%s://%s@%s:%d/%s?sslmode=%s", c.Driver, c.User, c.Host, c.Port, c.DBName, c.SSLMode)
	if c.Transport != "" {
		s += "&transport=" + c.Transport
	}
	return s
}

// ParseConnectionURL turns a postgres:// or mysql:// URL into a ConnectionConfig.
// Percent-encoded credentials are decoded.
func ParseConnectionURL(raw string) (ConnectionConfig, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return ConnectionConfig{}, fmt.Errorf("parsing database URL: %w", err)
	}

	var cfg ConnectionConfig
	switch u.Scheme {
	case "postgres", "postgresql":
		cfg.Driver = "postgres"
	case "mysql":
		cfg.Driver = "mysql"
	default:
		return ConnectionConfig{}, fmt.Errorf("unsupported database type: %s", u.Scheme)
	}

	cfg.Host = u.Hostname()
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return ConnectionConfig{}, fmt.Errorf("parsing port %q: %w", p, err)
		}
		cfg.Port = port
	}
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Password, _ = u.User.Password()
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")

	q := u.Query()
	cfg.SSLMode = q.Get("sslmode")
	cfg.Transport = q.Get("transport")
	return cfg, nil
}

// quoteDSNValue quotes a value for a keyword/value connection string.
func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " '\\") {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

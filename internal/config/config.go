// Package config loads pgtransfer settings from defaults, a YAML file,
// environment variables and command line flags.
package config

import (
	"fmt"
	"strings"

	db "github.com/KazanKK/pgtransfer/database"
	"github.com/KazanKK/pgtransfer/internal/utils"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "PGTRANSFER_"

// Default values.
const (
	DefaultDriver    = "postgres"
	DefaultTransport = "pq"
	DefaultHost      = "localhost"
	DefaultUser      = "postgres"
	DefaultDBName    = "postgres"
	DefaultSSLMode   = "disable"
	DefaultOutputDir = "./exported_csvs"
	DefaultTable     = "parameter_master"
)

// Config holds every setting of a run. Port 0 and an empty schema mean the
// driver default.
type Config struct {
	Driver    string `koanf:"driver" yaml:"driver"`
	Transport string `koanf:"transport" yaml:"transport,omitempty"`
	URL       string `koanf:"url" yaml:"url,omitempty"`
	Host      string `koanf:"host" yaml:"host"`
	Port      int    `koanf:"port" yaml:"port,omitempty"`
	User      string `koanf:"user" yaml:"user"`
	Password  string `koanf:"password" yaml:"-"`
	DBName    string `koanf:"dbname" yaml:"dbname"`
	SSLMode   string `koanf:"sslmode" yaml:"sslmode"`
	Schema    string `koanf:"schema" yaml:"schema,omitempty"`
	OutputDir string `koanf:"output_dir" yaml:"output_dir"`
	Table     string `koanf:"table" yaml:"table"`
	Workbook  string `koanf:"workbook" yaml:"workbook,omitempty"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-" yaml:"-"`
}

// Options controls Load.
type Options struct {
	// File is an explicit config file. When empty, utils.FindConfigFile is used
	// and a missing file is not an error.
	File string
	// Profile selects the profiles.<name> section of the config file.
	Profile string
	// Overrides are applied last, keyed like the koanf tags of Config.
	Overrides map[string]interface{}
}

// Defaults returns the default settings as koanf keys.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"driver":     DefaultDriver,
		"transport":  DefaultTransport,
		"host":       DefaultHost,
		"port":       0,
		"user":       DefaultUser,
		"dbname":     DefaultDBName,
		"sslmode":    DefaultSSLMode,
		"output_dir": DefaultOutputDir,
		"table":      DefaultTable,
	}
}

// Load builds a Config. Precedence, lowest first: defaults, config file,
// selected profile, PGTRANSFER_* environment variables, overrides.
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	path := opts.File
	if path == "" {
		if found, err := utils.FindConfigFile(); err == nil {
			path = found
		}
	}

	if path != "" {
		fk := koanf.New(".")
		if err := fk.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := k.Merge(fk); err != nil {
			return nil, fmt.Errorf("merging config file %s: %w", path, err)
		}
		if opts.Profile != "" {
			profile := fk.Cut("profiles." + opts.Profile)
			if len(profile.Keys()) == 0 {
				return nil, fmt.Errorf("profile %q not found in %s", opts.Profile, path)
			}
			if err := k.Merge(profile); err != nil {
				return nil, fmt.Errorf("merging profile %s: %w", opts.Profile, err)
			}
		}
	} else if opts.Profile != "" {
		return nil, fmt.Errorf("profile %q requested but no config file found", opts.Profile)
	}

	// PGTRANSFER_OUTPUT_DIR -> output_dir
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.File = path
	return &cfg, nil
}

// Connection returns the database parameters. A URL, when set, takes
// precedence over the individual fields it carries.
func (c *Config) Connection() (db.ConnectionConfig, error) {
	conn := db.ConnectionConfig{
		Driver:    c.Driver,
		Transport: c.Transport,
		Host:      c.Host,
		Port:      c.Port,
		User:      c.User,
		Password:  c.Password,
		DBName:    c.DBName,
		SSLMode:   c.SSLMode,
	}
	if conn.Driver == "mysql" && conn.Transport == DefaultTransport {
		conn.Transport = ""
	}
	if c.URL == "" {
		return conn, nil
	}

	u, err := db.ParseConnectionURL(c.URL)
	if err != nil {
		return db.ConnectionConfig{}, err
	}
	if u.Driver != conn.Driver {
		// A URL for another engine brings its own defaults. The password may
		// come from a prompt or PGTRANSFER_PASSWORD rather than the URL.
		conn = db.ConnectionConfig{Driver: u.Driver, Password: c.Password}
	}
	if u.Transport != "" {
		conn.Transport = u.Transport
	}
	if u.Host != "" {
		conn.Host = u.Host
	}
	if u.Port != 0 {
		conn.Port = u.Port
	}
	if u.User != "" {
		conn.User = u.User
	}
	if u.Password != "" {
		conn.Password = u.Password
	}
	if u.DBName != "" {
		conn.DBName = u.DBName
	}
	if u.SSLMode != "" {
		conn.SSLMode = u.SSLMode
	}
	return conn, nil
}

// String describes the configuration with the password redacted.
func (c *Config) String() string {
	password := ""
	if c.Password != "" {
		password = "****"
	}
	return fmt.Sprintf("driver=%s transport=%s host=%s port=%d user=%s password=%s dbname=%s sslmode=%s schema=%s",
		c.Driver, c.Transport, c.Host, c.Port, c.User, password, c.DBName, c.SSLMode, c.Schema)
}

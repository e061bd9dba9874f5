package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Config represents the application configuration.
type Config struct {
	Targets     []Connection `mapstructure:"targets" yaml:"targets"`
	Preferences Preferences  `mapstructure:"preferences" yaml:"preferences"`
	Server      Server       `mapstructure:"server" yaml:"server"`
	Log         Log          `mapstructure:"log" yaml:"log"`
}

// Connection represents a named database connection target.
type Connection struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Driver   string `mapstructure:"driver" yaml:"driver"`
	URL      string `mapstructure:"url" yaml:"url,omitempty"`
	Host     string `mapstructure:"host" yaml:"host,omitempty"`
	Port     int    `mapstructure:"port" yaml:"port,omitempty"`
	Database string `mapstructure:"database" yaml:"database,omitempty"`
	Username string `mapstructure:"username" yaml:"username,omitempty"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode,omitempty"`
}

// Preferences holds user preferences.
type Preferences struct {
	DefaultTarget string `mapstructure:"default_target" yaml:"default_target"`
}

// Server holds web server settings.
type Server struct {
	Listen        string `mapstructure:"listen" yaml:"listen"`
	SessionSecret string `mapstructure:"session_secret" yaml:"session_secret,omitempty"`
	PageSize      int    `mapstructure:"page_size" yaml:"page_size"`
	// CORSOrigins lists the origins allowed to call the JSON API from a browser.
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Log holds logging settings.
type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DSN builds a PostgreSQL connection string from the connection profile.
// An explicit URL wins over the individual fields.
func (c Connection) DSN() string {
	if c.URL != "" {
		return c.URL
	}

	u := url.URL{
		Scheme: "postgresql",
		Host:   c.Host,
		Path:   "/" + c.Database,
	}
	if c.Port > 0 {
		u.Host += ":" + strconv.Itoa(c.Port)
	}
	if c.Username != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.Username, c.Password)
		} else {
			u.User = url.User(c.Username)
		}
	}
	if c.SSLMode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(c.SSLMode)
	}
	return u.String()
}

// DisplayString returns a human-readable summary of the connection, without secrets.
func (c Connection) DisplayString() string {
	if c.URL != "" && c.Host == "" {
		parsed, err := ParseDSN(c.URL)
		if err != nil {
			return "<invalid url>"
		}
		return parsed.DisplayString()
	}

	s := c.Host
	if c.Port > 0 {
		s += ":" + strconv.Itoa(c.Port)
	}
	s += "/" + c.Database
	if c.Username != "" {
		s = c.Username + "@" + s
	}
	return s
}

// ParseDSN parses a PostgreSQL connection string into a Connection.
func ParseDSN(dsn string) (Connection, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return Connection{}, fmt.Errorf("invalid DSN: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return Connection{}, fmt.Errorf("invalid DSN: unsupported scheme %q", u.Scheme)
	}

	conn := Connection{
		Driver:   "postgres",
		Host:     u.Hostname(),
		Database: strings.TrimPrefix(u.Path, "/"),
		SSLMode:  u.Query().Get("sslmode"),
	}

	if u.User != nil {
		conn.Username = u.User.Username()
		if p, ok := u.User.Password(); ok {
			conn.Password = p
		}
	}

	if portStr := u.Port(); portStr != "" {
		conn.Port, _ = strconv.Atoi(portStr)
	}
	if conn.Port == 0 {
		conn.Port = 5432
	}

	// Auto-generate a name
	conn.Name = fmt.Sprintf("postgres-%s-%d-%s", conn.Host, conn.Port, conn.Database)

	return conn, nil
}

// Target returns the named target.
func (cfg *Config) Target(name string) (Connection, bool) {
	for _, c := range cfg.Targets {
		if c.Name == name {
			return c, true
		}
	}
	return Connection{}, false
}

// HasTarget checks if a target with the given name already exists.
func (cfg *Config) HasTarget(name string) bool {
	_, ok := cfg.Target(name)
	return ok
}

// AddTarget appends a target if it doesn't already exist.
func (cfg *Config) AddTarget(conn Connection) {
	if !cfg.HasTarget(conn.Name) {
		cfg.Targets = append(cfg.Targets, conn)
	}
}

// DefaultTarget returns the preferred target, or the first one.
func (cfg *Config) DefaultTarget() (Connection, bool) {
	if len(cfg.Targets) == 0 {
		return Connection{}, false
	}
	if cfg.Preferences.DefaultTarget != "" {
		if c, ok := cfg.Target(cfg.Preferences.DefaultTarget); ok {
			return c, true
		}
	}
	return cfg.Targets[0], true
}

// RemoveTarget deletes the named target and reports whether it existed.
func (cfg *Config) RemoveTarget(name string) bool {
	for i, c := range cfg.Targets {
		if c.Name == name {
			cfg.Targets = append(cfg.Targets[:i], cfg.Targets[i+1:]...)
			if cfg.Preferences.DefaultTarget == name {
				cfg.Preferences.DefaultTarget = ""
			}
			return true
		}
	}
	return false
}

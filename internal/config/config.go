// Package config loads jot settings from defaults, an optional YAML file
// and NOTES_* environment variables, in that order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "NOTES_"

// Config holds all settings of a jot process.
type Config struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	DataDir           string        `yaml:"data_dir"`
	AdminPassword     string        `yaml:"admin_password"`
	AdminPasswordHash string        `yaml:"admin_password_hash"`
	CookieName        string        `yaml:"cookie_name"`
	CookieSecure      bool          `yaml:"cookie_secure"`
	IDScheme          string        `yaml:"id_scheme"`
	Format            string        `yaml:"format"`
	Versioning        bool          `yaml:"versioning"`
	LoginWindow       time.Duration `yaml:"login_window"`
	LoginThreshold    int           `yaml:"login_threshold"`
	RequestRPS        float64       `yaml:"request_rps"`
	RequestBurst      int           `yaml:"request_burst"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           7056,
		DataDir:        "./data",
		CookieName:     "notes_session",
		IDScheme:       "timestamp",
		Format:         "json",
		LoginWindow:    5 * time.Minute,
		LoginThreshold: 5,
		RequestRPS:     20,
		RequestBurst:   40,
	}
}

// ValidationError represents a configuration validation error with multiple issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Load builds a Config. An empty path skips the file; a missing file is an
// error only when the path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	problems := cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			problems = append(problems, vErr.Errors...)
		}
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Errors: problems}
	}
	return &cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnv overlays NOTES_* variables and returns the ones it could not parse.
func (c *Config) applyEnv(getenv func(string) string) []string {
	var problems []string
	lookup := func(key string) (string, bool) {
		v := strings.TrimSpace(getenv(EnvPrefix + key))
		return v, v != ""
	}
	bad := func(key, value string, err error) {
		problems = append(problems, fmt.Sprintf("%s%s=%q: %v", EnvPrefix, key, value, err))
	}

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				bad(key, v, err)
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				bad(key, v, err)
				return
			}
			*dst = b
		}
	}

	str("HOST", &c.Host)
	integer("PORT", &c.Port)
	str("DATA_DIR", &c.DataDir)
	str("ADMIN_PASSWORD", &c.AdminPassword)
	str("ADMIN_PASSWORD_HASH", &c.AdminPasswordHash)
	str("COOKIE_NAME", &c.CookieName)
	boolean("COOKIE_SECURE", &c.CookieSecure)
	str("ID_SCHEME", &c.IDScheme)
	str("FORMAT", &c.Format)
	boolean("VERSIONING", &c.Versioning)
	if v, ok := lookup("LOGIN_WINDOW"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			bad("LOGIN_WINDOW", v, err)
		} else {
			c.LoginWindow = d
		}
	}
	integer("LOGIN_THRESHOLD", &c.LoginThreshold)
	if v, ok := lookup("REQUEST_RPS"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			bad("REQUEST_RPS", v, err)
		} else {
			c.RequestRPS = f
		}
	}
	integer("REQUEST_BURST", &c.RequestBurst)

	return problems
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("port must be between 1 and 65535, got %d", c.Port))
	}
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, "data_dir must not be empty")
	}
	if strings.TrimSpace(c.CookieName) == "" {
		errs = append(errs, "cookie_name must not be empty")
	}
	switch c.IDScheme {
	case "timestamp", "uuid":
	default:
		errs = append(errs, fmt.Sprintf("id_scheme must be timestamp or uuid, got %q", c.IDScheme))
	}
	switch strings.ToLower(c.Format) {
	case "json", "yaml", "yml":
	default:
		errs = append(errs, fmt.Sprintf("format must be json or yaml, got %q", c.Format))
	}
	if c.LoginWindow <= 0 {
		errs = append(errs, "login_window must be positive")
	}
	if c.LoginThreshold < 1 {
		errs = append(errs, "login_threshold must be at least 1")
	}
	if c.RequestRPS < 0 {
		errs = append(errs, "request_rps must not be negative")
	}
	if c.RequestRPS > 0 && c.RequestBurst < 1 {
		errs = append(errs, "request_burst must be at least 1 when request_rps is set")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// NotesDir is the directory holding one file per note.
func (c *Config) NotesDir() string {
	return filepath.Join(c.DataDir, "notes")
}

// ListenAddr is the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// AuthEnabled reports whether an admin secret is configured.
func (c *Config) AuthEnabled() bool {
	return c.AdminPassword != "" || c.AdminPasswordHash != ""
}

// LogValue implements slog.LogValuer. Secrets are never logged.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("listen", c.ListenAddr()),
		slog.String("notes_dir", c.NotesDir()),
		slog.String("format", c.Format),
		slog.String("id_scheme", c.IDScheme),
		slog.Bool("versioning", c.Versioning),
		slog.Bool("auth_enabled", c.AuthEnabled()),
		slog.Duration("login_window", c.LoginWindow),
		slog.Int("login_threshold", c.LoginThreshold),
		slog.Float64("request_rps", c.RequestRPS),
	)
}

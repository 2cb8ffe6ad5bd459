// Package config loads todo-mcp settings. Sources, lowest to highest:
// built-in defaults, the config file (YAML, or TOML for *.toml), then TODO_*
// environment variables. Command-line flags are applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"todomcp/internal/logging"
	"todomcp/internal/storage"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "todo-mcp" // application name used for config and state directories

// DefaultWebPort is the dashboard port when TODO_WEB_PORT is unset.
const DefaultWebPort = 3456

// Config holds user configuration for todo-mcp.
type Config struct {
	Storage StorageConfig `yaml:"storage" toml:"storage"`
	Web     WebConfig     `yaml:"web" toml:"web"`
	Log     LogConfig     `yaml:"log" toml:"log"`
}

type StorageConfig struct {
	Driver      string   `yaml:"driver" toml:"driver"`
	DataPath    string   `yaml:"data_path,omitempty" toml:"data_path"`
	SQLitePath  string   `yaml:"sqlite_path,omitempty" toml:"sqlite_path"`
	DatabaseURL string   `yaml:"database_url,omitempty" toml:"database_url"`
	MaxFileSize int64    `yaml:"max_file_size,omitempty" toml:"max_file_size"`
	S3          S3Config `yaml:"s3,omitempty" toml:"s3"`
}

// S3Config configures the s3 driver. The secret key is never written to the
// config file; it comes from TODO_S3_SECRET_ACCESS_KEY or the OS keyring.
type S3Config struct {
	Bucket          string `yaml:"bucket,omitempty" toml:"bucket"`
	Key             string `yaml:"key,omitempty" toml:"key"`
	Region          string `yaml:"region,omitempty" toml:"region"`
	Endpoint        string `yaml:"endpoint,omitempty" toml:"endpoint"`
	PathStyle       bool   `yaml:"path_style,omitempty" toml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id,omitempty" toml:"access_key_id"`
	SecretAccessKey string `yaml:"-" toml:"-"`
}

type WebConfig struct {
	Port int `yaml:"port" toml:"port"`
	// CORSOrigins lists allowed origins; empty allows all.
	CORSOrigins []string `yaml:"cors_origins,omitempty" toml:"cors_origins"`
}

type LogConfig struct {
	Debug bool `yaml:"debug" toml:"debug"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{Driver: storage.DriverFile},
		Web:     WebConfig{Port: DefaultWebPort},
	}
}

// ConfigPath returns the standard config file path for the current platform.
func ConfigPath() string {
	return filepath.Join(xdg.ConfigHome, APP_NAME, "config.yaml")
}

// FindConfigFile returns the path to the config file, and whether it exists.
func FindConfigFile() (string, bool) {
	primary := ConfigPath()
	if _, err := os.Stat(primary); err == nil {
		logging.Debug("Config found at primary path", "path", primary)
		return primary, true
	}
	return primary, false
}

// Load builds the effective configuration. An empty path means the standard
// location, which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		if p, ok := FindConfigFile(); ok {
			path = p
		}
	}
	if path != "" {
		if err := cfg.LoadFrom(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFrom overlays the file at path onto c. Files ending in .toml are
// parsed as TOML, everything else as YAML.
func (c *Config) LoadFrom(path string) error {
	logging.Debug("Reading config file", "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays TODO_* environment variables read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	str("TODO_STORAGE_DRIVER", &c.Storage.Driver)
	str("TODO_DATA_PATH", &c.Storage.DataPath)
	str("TODO_SQLITE_PATH", &c.Storage.SQLitePath)
	str("TODO_DATABASE_URL", &c.Storage.DatabaseURL)
	str("TODO_S3_BUCKET", &c.Storage.S3.Bucket)
	str("TODO_S3_KEY", &c.Storage.S3.Key)
	str("TODO_S3_REGION", &c.Storage.S3.Region)
	str("TODO_S3_ENDPOINT", &c.Storage.S3.Endpoint)
	str("TODO_S3_ACCESS_KEY_ID", &c.Storage.S3.AccessKeyID)
	str("TODO_S3_SECRET_ACCESS_KEY", &c.Storage.S3.SecretAccessKey)

	if v, ok := lookup("TODO_S3_PATH_STYLE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TODO_S3_PATH_STYLE: %w", err)
		}
		c.Storage.S3.PathStyle = b
	}
	if v, ok := lookup("TODO_WEB_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TODO_WEB_PORT: %w", err)
		}
		c.Web.Port = port
	}
	if v, ok := lookup("TODO_CORS_ORIGIN"); ok && v != "" {
		c.Web.CORSOrigins = SplitOrigins(v)
	}
	if v, ok := lookup("DEBUG"); ok && v != "" {
		c.Log.Debug = true
	}
	return nil
}

// SplitOrigins parses a comma-separated origin list, dropping blanks.
func SplitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate rejects unknown drivers, out-of-range ports and incomplete
// driver settings.
func (c *Config) Validate() error {
	var errs []error

	driver := strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	known := driver == ""
	for _, d := range storage.Drivers {
		if d == driver {
			known = true
		}
	}
	if !known {
		errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q (supported: %s)", c.Storage.Driver, strings.Join(storage.Drivers, ", ")))
	}
	if driver == storage.DriverS3 && c.Storage.S3.Bucket == "" {
		errs = append(errs, errors.New("storage.s3.bucket: required for the s3 driver"))
	}
	if c.Storage.MaxFileSize < 0 {
		errs = append(errs, errors.New("storage.max_file_size: must not be negative"))
	}
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		errs = append(errs, fmt.Errorf("web.port: %d is out of range 1-65535", c.Web.Port))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// SecretSource supplies secrets that are kept out of the config file.
type SecretSource interface {
	DatabaseURL() (string, error)
	S3Secret() (string, error)
}

// StorageOptions maps the storage section onto storage.Options. Secrets not
// set in the config or environment are looked up in secrets (may be nil).
func (c *Config) StorageOptions(secrets SecretSource) storage.Options {
	s := c.Storage
	opts := storage.Options{
		Driver:      s.Driver,
		DataPath:    s.DataPath,
		SQLitePath:  s.SQLitePath,
		DatabaseURL: s.DatabaseURL,
		MaxFileSize: s.MaxFileSize,
		S3: storage.S3Options{
			Bucket:          s.S3.Bucket,
			Key:             s.S3.Key,
			Region:          s.S3.Region,
			Endpoint:        s.S3.Endpoint,
			PathStyle:       s.S3.PathStyle,
			AccessKeyID:     s.S3.AccessKeyID,
			SecretAccessKey: s.S3.SecretAccessKey,
		},
	}
	if secrets == nil {
		return opts
	}

	driver := strings.ToLower(strings.TrimSpace(s.Driver))
	if driver == storage.DriverPostgres && opts.DatabaseURL == "" {
		if dsn, err := secrets.DatabaseURL(); err == nil {
			opts.DatabaseURL = dsn
		} else {
			logging.Debug("No database URL in credential store", "error", err)
		}
	}
	if driver == storage.DriverS3 && opts.S3.AccessKeyID != "" && opts.S3.SecretAccessKey == "" {
		if secret, err := secrets.S3Secret(); err == nil {
			opts.S3.SecretAccessKey = secret
		} else {
			logging.Debug("No S3 secret in credential store", "error", err)
		}
	}
	return opts
}

// SaveTo writes the config as YAML with owner-only permissions.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// LogFilePath is where the debug log is written.
func LogFilePath() string {
	return filepath.Join(xdg.StateHome, APP_NAME, "todo-mcp.log")
}

// Package config handles the XDG configuration directory and client settings.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "tasksession"

	// ConfigFile is the optional YAML settings file.
	ConfigFile = "config.yaml"

	// EnvFile is the optional dotenv file read from the config directory.
	EnvFile = ".env"

	// CredentialFile is the stored bearer token for the file store.
	CredentialFile = "credential.json"

	// CredentialDBFile is the database used by the sqlite store.
	CredentialDBFile = "credential.db"

	// DefaultServerURL is where the task server listens in development.
	DefaultServerURL = "http://localhost:8000/api/"

	// DefaultRequestTimeout bounds a single HTTP round trip.
	DefaultRequestTimeout = 5 * time.Second
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `yaml:"-"`

	// Debug enables debug logging.
	Debug bool `yaml:"-"`

	// Quiet suppresses informational output.
	Quiet bool `yaml:"-"`

	// ServerURL is the base URL of the task API, always ending in "/".
	ServerURL string `yaml:"server_url" env:"TASKSESSION_SERVER_URL"`

	// CredentialStore selects where the token is kept: "file" or "sqlite".
	CredentialStore string `yaml:"credential_store" env:"TASKSESSION_CREDENTIAL_STORE"`

	// RequestTimeout bounds each HTTP round trip.
	RequestTimeout time.Duration `yaml:"request_timeout" env:"TASKSESSION_REQUEST_TIMEOUT"`

	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format" env:"TASKSESSION_LOG_FORMAT"`
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/tasksession or $HOME/.config/tasksession.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:             dir,
		ServerURL:       DefaultServerURL,
		CredentialStore: "file",
		RequestTimeout:  DefaultRequestTimeout,
		LogFormat:       "text",
	}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// Load layers config.yaml, the directory's .env file and TASKSESSION_*
// environment variables on top of the defaults, in that order.
// Missing files are not an error.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.FilePath())
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("invalid %s: %w", ConfigFile, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}

	if err := godotenv.Load(c.EnvPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", EnvFile, err)
	}

	if err := env.Load(c, nil); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}

	return c.normalize()
}

// SetServerURL overrides the server URL (from a flag) and re-validates it.
func (c *Config) SetServerURL(raw string) error {
	c.ServerURL = raw
	return c.normalize()
}

func (c *Config) normalize() error {
	u, err := url.Parse(strings.TrimSpace(c.ServerURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server url: %q", c.ServerURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	c.ServerURL = u.String()

	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", c.LogFormat)
	}
	return nil
}

// FilePath returns the path to config.yaml.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// EnvPath returns the path to the dotenv file.
func (c *Config) EnvPath() string {
	return filepath.Join(c.Dir, EnvFile)
}

// CredentialPath returns the path to the stored credential file.
func (c *Config) CredentialPath() string {
	return filepath.Join(c.Dir, CredentialFile)
}

// CredentialDBPath returns the path to the sqlite credential database.
func (c *Config) CredentialDBPath() string {
	return filepath.Join(c.Dir, CredentialDBFile)
}

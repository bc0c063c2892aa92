// Package config resolves the configuration directory and loads settings
// from config.toml and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
)

const (
	// AppName is the application directory name.
	AppName = "tasksync"

	// ConfigFile is the optional settings file inside the config directory.
	ConfigFile = "config.toml"

	// OAuthClientFile is the OAuth client credentials filename (googletasks backend).
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename (googletasks backend).
	TokenFile = "token.json"

	// DefaultAPIURL is the tasks API used when PUBLIC_API_URL is unset or empty.
	DefaultAPIURL = "https://apis.bionaraq.info"
)

// Backends.
const (
	BackendREST        = "rest"
	BackendGoogleTasks = "googletasks"
)

// Delete rollback policies.
const (
	RollbackSnapshot = "snapshot"
	RollbackMerge    = "merge"
)

// Config holds configuration paths and settings.
//
// Values are layered: defaults, then config.toml, then environment, then
// command-line flags (applied by the caller).
type Config struct {
	// Dir is the configuration directory path.
	Dir string `toml:"-"`

	// Debug enables debug logging.
	Debug bool `toml:"-"`

	// Quiet suppresses informational output.
	Quiet bool `toml:"-"`

	// APIURL is the base URL of the tasks REST API.
	APIURL string `toml:"api_url" env:"PUBLIC_API_URL" env-default:"https://apis.bionaraq.info"`

	// Backend selects the task backend: "rest" or "googletasks".
	Backend string `toml:"backend" env:"TASKSYNC_BACKEND" env-default:"rest"`

	// GoogleListID is the Google Tasks list used by the googletasks backend.
	GoogleListID string `toml:"google_list_id" env:"TASKSYNC_GOOGLE_LIST" env-default:"@default"`

	// Rollback is the delete rollback policy: "snapshot" or "merge".
	Rollback string `toml:"rollback" env:"TASKSYNC_ROLLBACK" env-default:"snapshot"`

	LogLevel  string `toml:"log_level" env:"TASKSYNC_LOG_LEVEL" env-default:"info"`
	LogFormat string `toml:"log_format" env:"TASKSYNC_LOG_FORMAT" env-default:"text"`
}

// Load reads configuration for configDir.
// If configDir is empty, uses XDG_CONFIG_HOME/tasksync or $HOME/.config/tasksync.
// A missing config.toml is not an error.
func Load(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}

	path := cfg.FilePath()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	// Env only fills fields the file left empty unless the variable is set.
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendREST, BackendGoogleTasks:
	default:
		return fmt.Errorf("unknown backend: %s", c.Backend)
	}
	switch c.Rollback {
	case RollbackSnapshot, RollbackMerge:
	default:
		return fmt.Errorf("unknown rollback policy: %s", c.Rollback)
	}
	switch c.LogFormat {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("unknown log format: %s", c.LogFormat)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", c.LogLevel)
	}
	return nil
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

// FilePath returns the path to config.toml.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

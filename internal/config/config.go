// Package config resolves the configuration directory and the settings
// read from config.yaml and TASKFLOW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"taskflow/internal/api"
	"taskflow/internal/session"
)

const (
	// AppName is the application directory name.
	AppName = "taskflow"

	// ConfigName is the config file name without extension.
	ConfigName = "config"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "TASKFLOW"

	// Client defaults, shared with the api package.
	DefaultAPIURL  = api.DefaultBaseURL
	DefaultTimeout = api.DefaultTimeout

	// DefaultLanguage is used when no language is configured.
	DefaultLanguage = "en"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	APIURL   string
	Timeout  time.Duration
	Language string
	Demo     bool
	Color    string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// JSON selects machine-readable output.
	JSON bool
}

// New creates a Config with defaults for the default or specified
// config directory. It does not read config.yaml; use Load for that.
// If configDir is empty, uses XDG_CONFIG_HOME/taskflow or $HOME/.config/taskflow.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:      dir,
		APIURL:   DefaultAPIURL,
		Timeout:  DefaultTimeout,
		Language: DefaultLanguage,
		Color:    ColorAuto,
	}, nil
}

// Load creates a Config for configDir and applies config.yaml and
// environment overrides. A missing config file is not an error.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cfg.Dir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("api_url", cfg.APIURL)
	v.SetDefault("timeout", cfg.Timeout)
	v.SetDefault("language", cfg.Language)
	v.SetDefault("demo", cfg.Demo)
	v.SetDefault("color", cfg.Color)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s: %w", filepath.Join(cfg.Dir, ConfigName+".yaml"), err)
		}
	}

	cfg.APIURL = strings.TrimRight(v.GetString("api_url"), "/")
	cfg.Timeout = v.GetDuration("timeout")
	cfg.Language = v.GetString("language")
	cfg.Demo = v.GetBool("demo")
	cfg.Color = strings.ToLower(v.GetString("color"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("api_url must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color %q (want auto, always or never)", c.Color)
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

// SessionPath returns the path to the persisted session.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, session.FileName)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

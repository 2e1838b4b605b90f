package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	godbus "github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath = "GNOME_RANDR_CONFIG"
	EnvBusName    = "GNOME_RANDR_BUS_NAME"
	EnvObjectPath = "GNOME_RANDR_OBJECT_PATH"
	EnvTimeout    = "GNOME_RANDR_TIMEOUT"
	EnvLogLevel   = "GNOME_RANDR_LOG_LEVEL"
	EnvNoColor    = "NO_COLOR"
)

type Config struct {
	BusName    string        `yaml:"bus_name"`
	ObjectPath string        `yaml:"object_path"`
	Timeout    time.Duration `yaml:"timeout"`
	LogLevel   string        `yaml:"log_level"`
	Color      bool          `yaml:"color"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		BusName:    "org.gnome.Mutter.DisplayConfig",
		ObjectPath: "/org/gnome/Mutter/DisplayConfig",
		Timeout:    5 * time.Second,
		LogLevel:   "warn",
		Color:      true,
	}
}

// Load builds the configuration from defaults, the config file and the
// environment, in that order. A missing config file is not an error.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		configPath = DefaultPath()
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath resolves the config file location from GNOME_RANDR_CONFIG,
// then XDG_CONFIG_HOME, then ~/.config.
func DefaultPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join("gnome-randr", "config.yaml")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "gnome-randr", "config.yaml")
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvBusName); v != "" {
		c.BusName = v
	}
	if v := os.Getenv(EnvObjectPath); v != "" {
		c.ObjectPath = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		c.Timeout = timeout
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	// https://no-color.org: any non-empty value disables color.
	if os.Getenv(EnvNoColor) != "" {
		c.Color = false
	}
	return nil
}

// Validate checks that the configuration can address the service.
func (c *Config) Validate() error {
	if c.BusName == "" {
		return errors.New("bus name cannot be empty")
	}
	if !godbus.ObjectPath(c.ObjectPath).IsValid() {
		return fmt.Errorf("invalid object path %q", c.ObjectPath)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

type Config struct {
	// local: sessions go straight to the sqlite file
	// remote: sessions go to the REST backend at APIURL
	Mode Mode `yaml:"mode"`

	DBPath   string `yaml:"db_path"`
	StateDir string `yaml:"state_dir"`

	APIURL         string        `yaml:"api_url"`
	AuthToken      string        `yaml:"auth_token"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// Dir is the default home of the config file, database and local state
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".timesheet"
	}
	return filepath.Join(home, ".timesheet")
}

// DefaultPath is where Load looks when no path is given
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

func Default() Config {
	dir := Dir()
	return Config{
		Mode:           ModeLocal,
		DBPath:         filepath.Join(dir, "timesheet.db"),
		StateDir:       filepath.Join(dir, "state"),
		RequestTimeout: 10 * time.Second,
		Port:           "3000",
		LogLevel:       "info",
	}
}

// Load builds the config from defaults, then the yaml file at path (if it
// exists), then TIMESHEET_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Mode {
	case ModeLocal:
	case ModeRemote:
		if c.APIURL == "" {
			return fmt.Errorf("api_url must be set in remote mode")
		}
	default:
		return fmt.Errorf("unknown mode %q (use local or remote)", c.Mode)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Mode = Mode(strings.ToLower(getEnv("TIMESHEET_MODE", string(cfg.Mode))))
	cfg.DBPath = getEnv("TIMESHEET_DB", cfg.DBPath)
	cfg.StateDir = getEnv("TIMESHEET_STATE_DIR", cfg.StateDir)
	cfg.APIURL = strings.TrimRight(getEnv("TIMESHEET_API_URL", cfg.APIURL), "/")
	cfg.AuthToken = getEnv("TIMESHEET_AUTH_TOKEN", cfg.AuthToken)
	cfg.Port = getEnv("TIMESHEET_PORT", getEnv("PORT", cfg.Port))
	cfg.LogLevel = getEnv("TIMESHEET_LOG_LEVEL", cfg.LogLevel)

	if v := os.Getenv("TIMESHEET_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TIMESHEET_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Package config loads the optional YAML settings file and applies
// environment overrides on top of the built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/foodplannery/internal/constants"
)

const (
	EnvStorage = "FOODPLANNERY_STORAGE"
	EnvDebug   = "FOODPLANNERY_DEBUG"
)

type Config struct {
	// Storage selects the provider: a .db path, a .json path, a postgres:// URL,
	// "keyring" for a connection string held in the OS keyring, or ":memory:".
	Storage                string        `yaml:"storage"`
	Debug                  bool          `yaml:"debug"`
	LogDir                 string        `yaml:"log_dir,omitempty"`
	OTPTTL                 time.Duration `yaml:"otp_ttl"`
	ConsultationSlots      []string      `yaml:"consultation_slots"`
	ConsultationWindowDays int           `yaml:"consultation_window_days"`

	path string
}

func Default() *Config {
	return &Config{
		Storage:                constants.DefaultStoragePath,
		OTPTTL:                 constants.DefaultOTPTTL,
		ConsultationSlots:      append([]string(nil), constants.DefaultConsultationSlots...),
		ConsultationWindowDays: constants.DefaultConsultationWindowDays,
	}
}

// Load reads path (a missing file is fine), then applies environment overrides.
func Load(path string) (*Config, error) {
	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	cfg.path = expanded

	data, err := os.ReadFile(expanded)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", expanded, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvStorage)); v != "" {
		c.Storage = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDebug)); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvDebug, v, err)
		}
		c.Debug = debug
	}
	return nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage) == "" {
		return errors.New("storage must not be empty")
	}
	if c.OTPTTL <= 0 {
		return fmt.Errorf("otp_ttl must be positive, got %s", c.OTPTTL)
	}
	if c.ConsultationWindowDays < 1 {
		return fmt.Errorf("consultation_window_days must be at least 1, got %d", c.ConsultationWindowDays)
	}
	if len(c.ConsultationSlots) == 0 {
		return errors.New("consultation_slots must list at least one time")
	}
	for _, slot := range c.ConsultationSlots {
		if _, err := time.Parse(constants.TimeFormat, slot); err != nil {
			return fmt.Errorf("invalid consultation slot %q: expected HH:MM", slot)
		}
	}
	return nil
}

// Save writes the config as YAML, creating the directory if needed.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.New("config has no path")
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) Path() string {
	return c.path
}

// Dir is the directory holding the config file; backups and logs live beneath it.
func (c *Config) Dir() string {
	if c.path == "" {
		dir, _ := ExpandPath(constants.DefaultConfigDir)
		return dir
	}
	return filepath.Dir(c.path)
}

func (c *Config) BackupDir() string {
	return filepath.Join(c.Dir(), constants.BackupDirName)
}

func (c *Config) LogDirectory() string {
	if c.LogDir != "" {
		if dir, err := ExpandPath(c.LogDir); err == nil {
			return dir
		}
	}
	return filepath.Join(c.Dir(), "logs")
}

// ExpandPath replaces a leading ~ with the user's home directory
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

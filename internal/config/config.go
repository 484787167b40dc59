// Package config loads smartinvoice settings from a YAML file with
// environment variable overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	applog "github.com/roach88/smartinvoice/internal/log"
)

// CurrentVersion is the config_version written by this build.
const CurrentVersion = 1

// Env var names used as overrides.
const (
	EnvConfigPath = "SMARTINVOICE_CONFIG"
	EnvDataDir    = "SMARTINVOICE_DATA_DIR"
)

type StorageConfig struct {
	// DataDir holds the SmartInvoiceDB file.
	DataDir string `yaml:"data_dir"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Config is the user-editable configuration.
type Config struct {
	ConfigVersion int           `yaml:"config_version"`
	Storage       StorageConfig `yaml:"storage"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		ConfigVersion: CurrentVersion,
		Storage:       StorageConfig{DataDir: defaultDataDir()},
		Logging:       LoggingConfig{Level: "info", Format: "text"},
	}
}

// defaultDataDir resolves the per-user data directory, falling back to the
// working directory when no home can be found.
func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "smartinvoice")
	}
	return ".smartinvoice"
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (or $SMARTINVOICE_CONFIG when path is empty; a missing file is not an
// error in that case), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Defaults()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
	}

	if path != "" {
		f, err := os.Open(path)
		switch {
		case err == nil:
			defer f.Close()
			fileCfg, err := Decode(f)
			if err != nil {
				return cfg, fmt.Errorf("config %s: %w", path, err)
			}
			mergeInto(&cfg, &fileCfg)
		case errors.Is(err, os.ErrNotExist) && !explicit:
			// optional file
		default:
			return cfg, fmt.Errorf("open config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Decode parses a YAML config document, rejecting unknown fields.
func Decode(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse YAML: %w", err)
	}
	if cfg.ConfigVersion > CurrentVersion {
		return Config{}, fmt.Errorf("config_version %d is newer than supported %d", cfg.ConfigVersion, CurrentVersion)
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// LogOptions converts the logging section into logger options.
func (c Config) LogOptions() applog.Options {
	return applog.Options{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.Source,
		File:      c.Logging.File,
	}
}

func mergeInto(dst *Config, src *Config) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if v := strings.TrimSpace(src.Storage.DataDir); v != "" {
		dst.Storage.DataDir = v
	}
	if v := strings.TrimSpace(src.Logging.Level); v != "" {
		dst.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Logging.Format); v != "" {
		dst.Logging.Format = strings.ToLower(v)
	}
	dst.Logging.Source = src.Logging.Source
	if v := strings.TrimSpace(src.Logging.File); v != "" {
		dst.Logging.File = v
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(applog.EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(applog.EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(applog.EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(applog.EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

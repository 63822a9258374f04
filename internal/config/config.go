// Package config resolves runtime settings from flags, an optional .env
// file, an optional config.yaml, environment variables and the OS keyring,
// in that order of increasing precedence except that an explicit --config
// flag always wins for the storage location.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/dateutil"
)

const (
	FileName    = "config.yaml"
	EnvFileName = ".env"
)

type StorageKind int

const (
	StorageSQLite StorageKind = iota
	StorageJSON
	StoragePostgres
)

func (k StorageKind) String() string {
	switch k {
	case StorageJSON:
		return "json"
	case StoragePostgres:
		return "postgres"
	default:
		return "sqlite"
	}
}

type Notifications struct {
	Console bool `yaml:"console"`
	Tray    bool `yaml:"tray"`
}

type Backup struct {
	Auto bool `yaml:"auto"`
}

// File is the on-disk shape of config.yaml.
type File struct {
	Timezone      string         `yaml:"timezone"`
	LogLevel      string         `yaml:"log_level"`
	Notifications *Notifications `yaml:"notifications"`
	Backup        *Backup        `yaml:"backup"`
}

type Config struct {
	// Storage is a file path or a PostgreSQL connection string.
	Storage     string
	StorageKind StorageKind
	// ConfigDir holds config.yaml, .env, logs and backups.
	ConfigDir     string
	Timezone      string
	Location      *time.Location
	Debug         bool
	LogLevel      string
	Notifications Notifications
	Backup        Backup
	// Source names where Storage came from: flag, env or keyring.
	Source string
}

// Options are the inputs gathered by the CLI before Load runs.
type Options struct {
	// StoragePath is the --config flag value (already defaulted by kong).
	StoragePath string
	Timezone    string
	Debug       bool
	// KeyringLookup returns a stored connection string. Nil disables the keyring.
	KeyringLookup func() (string, error)
}

// Defaults returns the settings used when no config.yaml exists.
func Defaults() File {
	return File{
		Timezone:      "Local",
		Notifications: &Notifications{Console: true},
		Backup:        &Backup{Auto: true},
	}
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	storagePath := opts.StoragePath
	if storagePath == "" {
		storagePath = constants.DefaultConfigPath
	}
	explicit := storagePath != constants.DefaultConfigPath

	cfg := &Config{
		Debug:  opts.Debug,
		Source: "flag",
	}

	expanded, err := ExpandPath(storagePath)
	if err != nil {
		return nil, err
	}
	cfg.Storage = expanded
	cfg.StorageKind = DetectKind(expanded)

	cfg.ConfigDir, err = configDir(cfg)
	if err != nil {
		return nil, err
	}

	// .env never overrides variables already set in the process
	envPath := filepath.Join(cfg.ConfigDir, EnvFileName)
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
		}
	}

	file, err := ReadFile(filepath.Join(cfg.ConfigDir, FileName))
	if err != nil {
		return nil, err
	}
	cfg.Notifications = *file.Notifications
	cfg.Backup = *file.Backup
	cfg.LogLevel = file.LogLevel

	cfg.Timezone = firstNonEmpty(opts.Timezone, os.Getenv(constants.EnvTimezone), file.Timezone, "Local")
	cfg.Location, err = dateutil.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	if !explicit {
		if conn := strings.TrimSpace(os.Getenv(constants.EnvDBConnection)); conn != "" {
			cfg.Storage, cfg.StorageKind, cfg.Source = conn, StoragePostgres, "env"
		} else if opts.KeyringLookup != nil {
			if conn, err := opts.KeyringLookup(); err == nil && strings.TrimSpace(conn) != "" {
				cfg.Storage, cfg.StorageKind, cfg.Source = conn, StoragePostgres, "keyring"
			}
		}
	}

	return cfg, nil
}

// ReadFile decodes a config.yaml, filling anything it omits from Defaults.
// A missing file yields the defaults.
func ReadFile(path string) (File, error) {
	file := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return file, nil
		}
		return File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var parsed File
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return File{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if parsed.Timezone != "" {
		if !dateutil.ValidateTimezone(parsed.Timezone) {
			return File{}, fmt.Errorf("invalid timezone %q in %s", parsed.Timezone, path)
		}
		file.Timezone = parsed.Timezone
	}
	if parsed.LogLevel != "" {
		file.LogLevel = parsed.LogLevel
	}
	if parsed.Notifications != nil {
		file.Notifications = parsed.Notifications
	}
	if parsed.Backup != nil {
		file.Backup = parsed.Backup
	}
	return file, nil
}

// WriteFile saves f as YAML.
func WriteFile(path string, f File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// ExpandPath replaces a leading ~ with the user's home directory. Connection
// strings are returned unchanged.
func ExpandPath(p string) (string, error) {
	if DetectKind(p) == StoragePostgres {
		return p, nil
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
	}
	return p, nil
}

// DetectKind picks a storage backend from a path or connection string.
func DetectKind(ref string) StorageKind {
	if strings.HasPrefix(ref, "postgres://") || strings.HasPrefix(ref, "postgresql://") || strings.Contains(ref, "host=") || strings.Contains(ref, "dbname=") {
		return StoragePostgres
	}
	if strings.EqualFold(filepath.Ext(ref), ".json") {
		return StorageJSON
	}
	return StorageSQLite
}

func configDir(cfg *Config) (string, error) {
	if cfg.StorageKind != StoragePostgres {
		return filepath.Dir(cfg.Storage), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	return filepath.Join(base, constants.AppName), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

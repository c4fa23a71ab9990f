package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Auth     AuthConfig     `yaml:"auth" toml:"auth"`
	Storage  StorageConfig  `yaml:"storage" toml:"storage"`
	Worker   WorkerConfig   `yaml:"worker" toml:"worker"`
	Log      LogConfig      `yaml:"log" toml:"log"`
	Project  ProjectConfig  `yaml:"project" toml:"project"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int      `yaml:"port" toml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout" toml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// AuthConfig contains admin authentication settings. Either the plain key
// (env-only) or a bcrypt hash of it must be set outside dev mode.
type AuthConfig struct {
	APIKey     string `yaml:"-" toml:"-"`
	APIKeyHash string `yaml:"api_key_hash" toml:"api_key_hash"`
}

// StorageConfig contains screenshot blob storage settings.
// An empty bucket selects local disk storage under LocalDir.
type StorageConfig struct {
	Bucket         string   `yaml:"bucket" toml:"bucket"`
	Endpoint       string   `yaml:"endpoint" toml:"endpoint"`
	Region         string   `yaml:"region" toml:"region"`
	UseSSL         *bool    `yaml:"use_ssl" toml:"use_ssl"`
	AccessKey      string   `yaml:"-" toml:"-"`
	SecretKey      string   `yaml:"-" toml:"-"`
	PublicBaseURL  string   `yaml:"public_base_url" toml:"public_base_url"`
	URLExpiry      Duration `yaml:"url_expiry" toml:"url_expiry"`
	LocalDir       string   `yaml:"local_dir" toml:"local_dir"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes" toml:"max_upload_bytes"`
}

// WorkerConfig contains background worker settings.
type WorkerConfig struct {
	// RecurringInterval schedules recurring-cost processing. Zero disables it.
	RecurringInterval Duration `yaml:"recurring_interval" toml:"recurring_interval"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level      string `yaml:"level" toml:"level"`
	Format     string `yaml:"format" toml:"format"`
	File       string `yaml:"file" toml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" toml:"max_age_days"`
}

// ProjectConfig describes the tracked project.
type ProjectConfig struct {
	Name               string   `yaml:"name" toml:"name"`
	FundingURL         string   `yaml:"funding_url" toml:"funding_url"`
	DefaultLinkedInURL string   `yaml:"default_linkedin_url" toml:"default_linkedin_url"`
	Currency           string   `yaml:"currency" toml:"currency"`
	CORSOrigins        []string `yaml:"cors_origins" toml:"cors_origins"`
}

// Duration is a wrapper around time.Duration that parses from "90s"-style strings.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// UnmarshalText implements encoding.TextUnmarshaler, used by the TOML decoder.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load loads configuration with precedence: defaults → config file → env vars.
func Load() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("DEVTRACK_CONFIG_PATH", "config/devtrack.yaml")

	// Missing file is not an error
	if err := loadFile(cfg, configPath, false); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific path, which must exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	if err := loadFile(cfg, path, true); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOffline loads configuration for commands that work on the database
// directly. Admin credentials are not required.
func LoadOffline() (*Config, error) {
	cfg := newDefaults()

	if err := loadFile(cfg, getEnv("DEVTRACK_CONFIG_PATH", "config/devtrack.yaml"), false); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// newDefaults returns a Config with all default values.
func newDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Database: DatabaseConfig{
			Path: "data/devtrack.db",
		},
		Storage: StorageConfig{
			URLExpiry:      Duration(7 * 24 * time.Hour),
			LocalDir:       "data/uploads",
			MaxUploadBytes: 10 << 20,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Project: ProjectConfig{
			Name:               "My Indie Game",
			DefaultLinkedInURL: "https://www.linkedin.com/",
			Currency:           "£",
			CORSOrigins:        []string{"*"},
		},
	}
}

// loadFile decodes the file at path into cfg. Files ending in .toml are
// TOML; everything else is YAML.
func loadFile(cfg *Config, path string, mustExist bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("parsing config file: %w", err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty env vars override config values.
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("DEVTRACK_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	envDuration("DEVTRACK_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("DEVTRACK_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("DEVTRACK_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	// Database
	envString("DEVTRACK_DB_PATH", &cfg.Database.Path)

	// Auth
	envString("DEVTRACK_API_KEY", &cfg.Auth.APIKey)
	envString("DEVTRACK_API_KEY_HASH", &cfg.Auth.APIKeyHash)

	// Storage
	envString("DEVTRACK_S3_BUCKET", &cfg.Storage.Bucket)
	envString("DEVTRACK_S3_ENDPOINT", &cfg.Storage.Endpoint)
	envString("DEVTRACK_S3_REGION", &cfg.Storage.Region)
	envString("DEVTRACK_S3_ACCESS_KEY", &cfg.Storage.AccessKey)
	envString("DEVTRACK_S3_SECRET_KEY", &cfg.Storage.SecretKey)
	envString("DEVTRACK_S3_PUBLIC_BASE_URL", &cfg.Storage.PublicBaseURL)
	if v := os.Getenv("DEVTRACK_S3_USE_SSL"); v != "" {
		b := v == "true" || v == "1"
		cfg.Storage.UseSSL = &b
	}
	envDuration("DEVTRACK_S3_URL_EXPIRY", &cfg.Storage.URLExpiry)
	envString("DEVTRACK_UPLOAD_DIR", &cfg.Storage.LocalDir)
	if v := os.Getenv("DEVTRACK_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Storage.MaxUploadBytes = n
		}
	}

	// Worker
	envDuration("DEVTRACK_RECURRING_INTERVAL", &cfg.Worker.RecurringInterval)

	// Log
	envString("DEVTRACK_LOG_LEVEL", &cfg.Log.Level)
	envString("DEVTRACK_LOG_FORMAT", &cfg.Log.Format)
	envString("DEVTRACK_LOG_FILE", &cfg.Log.File)

	// Project
	envString("DEVTRACK_PROJECT_NAME", &cfg.Project.Name)
	envString("DEVTRACK_FUNDING_URL", &cfg.Project.FundingURL)
	envString("DEVTRACK_DEFAULT_LINKEDIN_URL", &cfg.Project.DefaultLinkedInURL)
	envString("DEVTRACK_CURRENCY", &cfg.Project.Currency)
	if v := os.Getenv("DEVTRACK_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Project.CORSOrigins = origins
	}
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envDuration(key string, dst *Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = Duration(d)
		}
	}
}

// DevMode reports whether DEVTRACK_DEV_MODE is enabled.
func DevMode() bool {
	return os.Getenv("DEVTRACK_DEV_MODE") == "true"
}

// validate checks that required configuration values are set.
// In dev mode the admin key requirement is skipped.
func (c *Config) validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return errors.New("storage.max_upload_bytes must be positive")
	}
	if c.Worker.RecurringInterval < 0 {
		return errors.New("worker.recurring_interval must not be negative")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("log.format must be json or text, got %q", c.Log.Format)
	}

	if DevMode() {
		return nil
	}
	if c.Auth.APIKey == "" && c.Auth.APIKeyHash == "" {
		return errors.New("DEVTRACK_API_KEY or auth.api_key_hash is required")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

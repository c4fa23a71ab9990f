package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// Helper to clear all config-related env vars
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		if key, _, _ := strings.Cut(kv, "="); strings.HasPrefix(key, "DEVTRACK_") {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

func setDevModeEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DEVTRACK_DEV_MODE", "true")
}

// dur converts Duration to time.Duration for comparison
func dur(d Duration) time.Duration {
	return time.Duration(d)
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)
	t.Setenv("DEVTRACK_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if dur(cfg.Server.ShutdownTimeout) != 15*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 15s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Database.Path != "data/devtrack.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "data/devtrack.db")
	}
	if cfg.Storage.MaxUploadBytes != 10<<20 {
		t.Errorf("Storage.MaxUploadBytes = %d, want 10 MiB", cfg.Storage.MaxUploadBytes)
	}
	if cfg.Storage.LocalDir != "data/uploads" {
		t.Errorf("Storage.LocalDir = %q, want data/uploads", cfg.Storage.LocalDir)
	}
	if cfg.Worker.RecurringInterval != 0 {
		t.Errorf("Worker.RecurringInterval = %v, want disabled", cfg.Worker.RecurringInterval)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want info/json", cfg.Log)
	}
	if cfg.Project.DefaultLinkedInURL != "https://www.linkedin.com/" {
		t.Errorf("Project.DefaultLinkedInURL = %q", cfg.Project.DefaultLinkedInURL)
	}
	if len(cfg.Project.CORSOrigins) != 1 || cfg.Project.CORSOrigins[0] != "*" {
		t.Errorf("Project.CORSOrigins = %v, want [*]", cfg.Project.CORSOrigins)
	}
}

func TestLoad_ValidationFailsWithoutAdminKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEVTRACK_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Error("Load() expected error when no admin key is configured")
	}
}

func TestLoad_AdminKeyHashSatisfiesValidation(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEVTRACK_CONFIG_PATH", writeConfig(t, "devtrack.yaml", "auth:\n  api_key_hash: \"$2a$10$abcdefghijklmnopqrstuv\"\n"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.APIKeyHash == "" {
		t.Error("Auth.APIKeyHash should be read from the file")
	}
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)
	t.Setenv("DEVTRACK_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DEVTRACK_PORT", "9090")
	t.Setenv("DEVTRACK_DB_PATH", "/custom/path.db")
	t.Setenv("DEVTRACK_RECURRING_INTERVAL", "6h")
	t.Setenv("DEVTRACK_S3_USE_SSL", "false")
	t.Setenv("DEVTRACK_CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("DEVTRACK_API_KEY", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if dur(cfg.Worker.RecurringInterval) != 6*time.Hour {
		t.Errorf("Worker.RecurringInterval = %v, want 6h", cfg.Worker.RecurringInterval)
	}
	if cfg.Storage.UseSSL == nil || *cfg.Storage.UseSSL {
		t.Errorf("Storage.UseSSL = %v, want false", cfg.Storage.UseSSL)
	}
	if got := strings.Join(cfg.Project.CORSOrigins, "|"); got != "https://a.example|https://b.example" {
		t.Errorf("CORSOrigins = %q", got)
	}
	if cfg.Auth.APIKey != "secret" {
		t.Errorf("Auth.APIKey = %q", cfg.Auth.APIKey)
	}
}

func TestLoad_InvalidEnvDurationIgnored(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)
	t.Setenv("DEVTRACK_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DEVTRACK_READ_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if dur(cfg.Server.ReadTimeout) != 30*time.Second {
		t.Errorf("ReadTimeout = %v, want default 30s", cfg.Server.ReadTimeout)
	}
}

func TestLoadFromFile_YAML(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)

	path := writeConfig(t, "devtrack.yaml", `
server:
  port: 9999
  read_timeout: 60s
storage:
  bucket: shots
  public_base_url: https://cdn.example
project:
  name: Starfall
  funding_url: https://ko-fi.example/starfall
worker:
  recurring_interval: 1h
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Server.Port != 9999 || dur(cfg.Server.ReadTimeout) != time.Minute {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Storage.Bucket != "shots" || cfg.Storage.PublicBaseURL != "https://cdn.example" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Project.Name != "Starfall" {
		t.Errorf("Project.Name = %q", cfg.Project.Name)
	}
	// Unset fields keep their defaults.
	if cfg.Database.Path != "data/devtrack.db" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
	if dur(cfg.Worker.RecurringInterval) != time.Hour {
		t.Errorf("RecurringInterval = %v", cfg.Worker.RecurringInterval)
	}
}

func TestLoadFromFile_TOML(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)

	path := writeConfig(t, "devtrack.toml", `
[server]
port = 7070
shutdown_timeout = "5s"

[log]
format = "text"

[project]
name = "Starfall"
cors_origins = ["https://starfall.example"]
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if dur(cfg.Server.ShutdownTimeout) != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 5s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want text", cfg.Log.Format)
	}
	if len(cfg.Project.CORSOrigins) != 1 || cfg.Project.CORSOrigins[0] != "https://starfall.example" {
		t.Errorf("CORSOrigins = %v", cfg.Project.CORSOrigins)
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadFromFile() on a missing file should fail")
	}
}

func TestLoadFromFile_InvalidDuration(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)
	path := writeConfig(t, "devtrack.yaml", "server:\n  read_timeout: forever\n")
	_, err := LoadFromFile(path)
	if err == nil || !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("LoadFromFile() error = %v, want invalid duration", err)
	}
}

func TestLoadFromFile_SecretsNotReadFromFile(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)
	path := writeConfig(t, "devtrack.yaml", "auth:\n  api_key: leaked\nstorage:\n  secret_key: leaked\n")

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Auth.APIKey != "" || cfg.Storage.SecretKey != "" {
		t.Error("secrets must only come from the environment")
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"zero upload limit", func(c *Config) { c.Storage.MaxUploadBytes = 0 }},
		{"negative interval", func(c *Config) { c.Worker.RecurringInterval = Duration(-time.Second) }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newDefaults()
			tt.mutate(cfg)
			if err := cfg.validate(); err == nil {
				t.Error("validate() = nil, want error")
			}
		})
	}
}

func TestDuration_MarshalYAML(t *testing.T) {
	out, err := yaml.Marshal(struct {
		D Duration `yaml:"d"`
	}{Duration(90 * time.Second)})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(out), "d: 1m30s") {
		t.Errorf("yaml = %q, want d: 1m30s", out)
	}
}

func TestLoadOffline_SkipsAdminKeyValidation(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEVTRACK_CONFIG_PATH", writeConfig(t, "devtrack.yaml", "database:\n  path: /tmp/offline.db\n"))

	cfg, err := LoadOffline()
	if err != nil {
		t.Fatalf("LoadOffline() error = %v", err)
	}
	if cfg.Database.Path != "/tmp/offline.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// isolateHome points HOME at a temp dir and clears DOCFLOW_* overrides.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{
		"DOCFLOW_API_URL", "DOCFLOW_TOKEN_PATH", "DOCFLOW_ENCRYPT_TOKEN",
		"DOCFLOW_POLL_INTERVAL", "DOCFLOW_LOG_LEVEL", "DOCFLOW_LOG_FORMAT",
		"DOCFLOW_LOG_FILE", "DOCFLOW_LANGUAGE",
	} {
		t.Setenv(k, "")
	}
	return home
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	home := isolateHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout() != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.API.Timeout())
	}
	if cfg.Notifications.PollInterval() != 30*time.Second {
		t.Errorf("PollInterval = %v", cfg.Notifications.PollInterval())
	}
	if want := filepath.Join(home, ".docflow", "token"); cfg.Session.TokenPath != want {
		t.Errorf("TokenPath = %q, want %q", cfg.Session.TokenPath, want)
	}
	if want := filepath.Join(home, ".docflow", "token.key"); cfg.Session.KeyPath != want {
		t.Errorf("KeyPath = %q, want %q", cfg.Session.KeyPath, want)
	}
	if cfg.UI.Language != "ru" {
		t.Errorf("Language = %q, want ru", cfg.UI.Language)
	}
}

func TestLoadFromPath_TOML(t *testing.T) {
	isolateHome(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
base_url = "https://docs.example.kz/"
timeout_secs = 10

[notifications]
poll_interval_secs = 60

[ui]
language = "en"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.API.BaseURL != "https://docs.example.kz" {
		t.Errorf("BaseURL = %q, trailing slash should be trimmed", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSecs != 10 {
		t.Errorf("TimeoutSecs = %d", cfg.API.TimeoutSecs)
	}
	if cfg.Notifications.PollIntervalSecs != 60 {
		t.Errorf("PollIntervalSecs = %d", cfg.Notifications.PollIntervalSecs)
	}
	if cfg.UI.Language != "en" {
		t.Errorf("Language = %q", cfg.UI.Language)
	}
	// Unset fields keep their defaults.
	if cfg.Notifications.Limit != 100 {
		t.Errorf("Limit = %d, want default 100", cfg.Notifications.Limit)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0o600 {
			t.Errorf("config perm = %o, want 600", info.Mode().Perm())
		}
	}
}

func TestLoadFromPath_JSON(t *testing.T) {
	isolateHome(t)

	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"api": {"base_url": "http://10.0.0.5:8000"}, "logging": {"level": "debug", "format": "json"}}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.API.BaseURL != "http://10.0.0.5:8000" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	isolateHome(t)
	t.Setenv("DOCFLOW_API_URL", "https://api.kyzylzhar.kz")
	t.Setenv("DOCFLOW_POLL_INTERVAL", "2m")
	t.Setenv("DOCFLOW_ENCRYPT_TOKEN", "yes")
	t.Setenv("DOCFLOW_LANGUAGE", "en")
	t.Setenv("DOCFLOW_TOKEN_PATH", "/tmp/docflow-token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.BaseURL != "https://api.kyzylzhar.kz" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Notifications.PollIntervalSecs != 120 {
		t.Errorf("PollIntervalSecs = %d, want 120", cfg.Notifications.PollIntervalSecs)
	}
	if !cfg.Session.EncryptToken {
		t.Error("EncryptToken should be true")
	}
	if cfg.Session.TokenPath != "/tmp/docflow-token" {
		t.Errorf("TokenPath = %q", cfg.Session.TokenPath)
	}
	if cfg.UI.Language != "en" {
		t.Errorf("Language = %q", cfg.UI.Language)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad scheme", func(c *Config) { c.API.BaseURL = "ftp://host" }, "api.base_url"},
		{"missing host", func(c *Config) { c.API.BaseURL = "http://" }, "api.base_url"},
		{"timeout", func(c *Config) { c.API.TimeoutSecs = 0 }, "api.timeout_secs"},
		{"poll too fast", func(c *Config) { c.Notifications.PollIntervalSecs = 1 }, "notifications.poll_interval_secs"},
		{"limit", func(c *Config) { c.Notifications.Limit = 5000 }, "notifications.limit"},
		{"level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"language", func(c *Config) { c.UI.Language = "de" }, "ui.language"},
		{"theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"key equals token", func(c *Config) {
			c.Session.EncryptToken = true
			c.Session.KeyPath = c.Session.TokenPath
		}, "session.key_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Session.TokenPath = "/tmp/token"
			cfg.Session.KeyPath = "/tmp/token.key"
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() = nil, want error on %s", tt.field)
			}
			var verrs ValidateErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("error type = %T, want ValidateErrors", err)
			}
			found := false
			for _, ve := range verrs {
				if ve.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for %s in %v", tt.field, err)
			}
		})
	}
}

func TestValidate_DefaultIsValid(t *testing.T) {
	cfg := Default()
	cfg.Session.TokenPath = "/tmp/token"
	cfg.Session.KeyPath = "/tmp/token.key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate(Default()) = %v", err)
	}
}

func TestValidateErrors_Joined(t *testing.T) {
	errs := ValidateErrors{
		{Field: "a", Message: "one"},
		{Field: "b", Message: "two"},
	}
	if got := errs.Error(); got != "a: one; b: two" {
		t.Errorf("Error() = %q", got)
	}
}

func TestSaveAndReload(t *testing.T) {
	isolateHome(t)

	cfg := Default()
	cfg.API.BaseURL = "https://docs.example.kz"
	cfg.Notifications.PollIntervalSecs = 45
	if err := cfg.SetDefaults(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# docflow configuration file") {
		t.Errorf("missing header comment:\n%s", data)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if loaded.API.BaseURL != cfg.API.BaseURL {
		t.Errorf("BaseURL = %q, want %q", loaded.API.BaseURL, cfg.API.BaseURL)
	}
	if loaded.Notifications.PollIntervalSecs != 45 {
		t.Errorf("PollIntervalSecs = %d", loaded.Notifications.PollIntervalSecs)
	}
}

func TestGetSet_DotNotation(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("api.base_url")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if v != "http://localhost:8000" {
		t.Errorf("Get(api.base_url) = %v", v)
	}

	if err := cfg.Set("notifications.poll_interval_secs", "90"); err != nil {
		t.Fatalf("Set(int) error = %v", err)
	}
	if cfg.Notifications.PollIntervalSecs != 90 {
		t.Errorf("PollIntervalSecs = %d", cfg.Notifications.PollIntervalSecs)
	}

	if err := cfg.Set("session.encrypt_token", "true"); err != nil {
		t.Fatalf("Set(bool) error = %v", err)
	}
	if !cfg.Session.EncryptToken {
		t.Error("EncryptToken not set")
	}

	if err := cfg.Set("api.requests_per_second", "2.5"); err != nil {
		t.Fatalf("Set(float) error = %v", err)
	}
	if cfg.API.RequestsPerSecond != 2.5 {
		t.Errorf("RequestsPerSecond = %v", cfg.API.RequestsPerSecond)
	}

	if err := cfg.Set("api.timeout_secs", "abc"); err == nil {
		t.Error("Set(non-integer) should fail")
	}
	if _, err := cfg.Get("api.nope"); err == nil {
		t.Error("Get(unknown) should fail")
	}
	if _, err := cfg.Get("api.base_url.more"); err == nil {
		t.Error("Get(through non-struct) should fail")
	}
}

func TestKeys_AllResolvable(t *testing.T) {
	cfg := Default()
	for _, k := range Keys() {
		if _, err := cfg.Get(k); err != nil {
			t.Errorf("Get(%q) error = %v", k, err)
		}
	}
}

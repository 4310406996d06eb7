// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/kyzylzhar/docflow/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete docflow configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Backend API
	API APIConfig `toml:"api" json:"api"`

	// Token persistence
	Session SessionConfig `toml:"session" json:"session"`

	// Notification polling
	Notifications NotificationsConfig `toml:"notifications" json:"notifications"`

	// Structured logging
	Logging LoggingConfig `toml:"logging" json:"logging"`

	// Terminal UI
	UI UIConfig `toml:"ui" json:"ui"`
}

// APIConfig describes how to reach the backend.
type APIConfig struct {
	// BaseURL is the backend origin; resource groups live under /api/...
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs bounds every request. There are no retries.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// RequestsPerSecond caps outbound requests (0 = unlimited).
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second"`
	// Burst is the limiter bucket size.
	Burst int `toml:"burst" json:"burst"`
}

// SessionConfig controls the persisted bearer token.
type SessionConfig struct {
	// TokenPath is the token file (default ~/.docflow/token).
	TokenPath string `toml:"token_path" json:"token_path"`
	// EncryptToken seals the token at rest with AES-256-GCM.
	EncryptToken bool `toml:"encrypt_token" json:"encrypt_token"`
	// KeyPath is the sealing key file (default ~/.docflow/token.key).
	KeyPath string `toml:"key_path" json:"key_path"`
	// WatchToken makes the TUI log out when another process removes the token.
	WatchToken bool `toml:"watch_token" json:"watch_token"`
}

// NotificationsConfig controls the notification poller.
type NotificationsConfig struct {
	PollIntervalSecs int `toml:"poll_interval_secs" json:"poll_interval_secs"`
	// Limit is passed as the list "limit" query parameter.
	Limit int `toml:"limit" json:"limit"`
}

// LoggingConfig controls the slog logger.
type LoggingConfig struct {
	// Level: debug, info, warn, error
	Level string `toml:"level" json:"level"`
	// Format: text or json
	Format string `toml:"format" json:"format"`
	// File receives TUI logs (default ~/.docflow/docflow.log). CLI commands
	// log to stderr unless File is set explicitly.
	File string `toml:"file" json:"file"`
}

// UIConfig contains terminal UI preferences.
type UIConfig struct {
	// Language for user-facing messages: ru or en
	Language string `toml:"language" json:"language"`
	// Theme: dark or light
	Theme string `toml:"theme" json:"theme"`
}

// Timeout returns the request timeout as a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// PollInterval returns the poll interval as a duration.
func (n NotificationsConfig) PollInterval() time.Duration {
	return time.Duration(n.PollIntervalSecs) * time.Second
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values. Paths are left
// empty and resolved under ~/.docflow by SetDefaults.
func Default() *Config {
	return &Config{
		Version: "1",

		API: APIConfig{
			BaseURL:           "http://localhost:8000",
			TimeoutSecs:       30,
			RequestsPerSecond: 10,
			Burst:             5,
		},

		Session: SessionConfig{
			EncryptToken: false,
			WatchToken:   true,
		},

		Notifications: NotificationsConfig{
			PollIntervalSecs: 30,
			Limit:            100,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},

		UI: UIConfig{
			Language: "ru",
			Theme:    "dark",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the docflow configuration directory path.
func ConfigDir() (string, error) {
	return util.DataDir()
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	return util.DataPath("config.toml")
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	return util.DataPath("config.json")
}

// ensureSecurePermissions tightens config files to 0600; they may hold a
// backend URL with embedded credentials.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		if err := os.Chmod(path, 0o600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	if path, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}
	if path, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	return finish(cfg)
}

// LoadFromPath loads configuration from a specific file with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

// finish applies env overrides, defaults and validation.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.SetDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Not fatal: permissions may not be fixable on every filesystem.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// SetDefaults fills zero values with defaults and resolves empty paths
// under ~/.docflow.
func (c *Config) SetDefaults() error {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}

	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = defaults.API.TimeoutSecs
	}
	if c.API.Burst == 0 {
		c.API.Burst = defaults.API.Burst
	}

	if c.Notifications.PollIntervalSecs == 0 {
		c.Notifications.PollIntervalSecs = defaults.Notifications.PollIntervalSecs
	}
	if c.Notifications.Limit == 0 {
		c.Notifications.Limit = defaults.Notifications.Limit
	}

	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaults.Logging.Format
	}

	if c.UI.Language == "" {
		c.UI.Language = defaults.UI.Language
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}

	var err error
	if c.Session.TokenPath == "" {
		if c.Session.TokenPath, err = util.DataPath("token"); err != nil {
			return err
		}
	}
	if c.Session.KeyPath == "" {
		if c.Session.KeyPath, err = util.DataPath("token.key"); err != nil {
			return err
		}
	}
	return nil
}

// DefaultLogFile is where the TUI writes logs when logging.file is unset.
func DefaultLogFile() (string, error) {
	return util.DataPath("docflow.log")
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# docflow configuration file\n")
	buf.WriteString("# Generated by docflow - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.WriteFileAtomic(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.API.BaseURL)
	switch {
	case err != nil:
		errs = append(errs, ValidationError{"api.base_url", fmt.Sprintf("invalid URL: %v", err)})
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, ValidationError{"api.base_url", fmt.Sprintf("scheme must be http or https, got %q", u.Scheme)})
	case u.Host == "":
		errs = append(errs, ValidationError{"api.base_url", "missing host"})
	}

	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{"api.timeout_secs", fmt.Sprintf("must be 1-600, got %d", c.API.TimeoutSecs)})
	}
	if c.API.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{"api.requests_per_second", "cannot be negative"})
	}
	if c.API.Burst < 1 {
		errs = append(errs, ValidationError{"api.burst", fmt.Sprintf("must be at least 1, got %d", c.API.Burst)})
	}

	// Anything faster than 5s hammers the backend for data that changes daily.
	if c.Notifications.PollIntervalSecs < 5 {
		errs = append(errs, ValidationError{"notifications.poll_interval_secs", fmt.Sprintf("must be at least 5, got %d", c.Notifications.PollIntervalSecs)})
	}
	if c.Notifications.Limit < 1 || c.Notifications.Limit > 1000 {
		errs = append(errs, ValidationError{"notifications.limit", fmt.Sprintf("must be 1-1000, got %d", c.Notifications.Limit)})
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, ValidationError{"logging.level", fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level)})
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, ValidationError{"logging.format", fmt.Sprintf("invalid format '%s', must be text or json", c.Logging.Format)})
	}

	switch strings.ToLower(c.UI.Language) {
	case "ru", "en":
	default:
		errs = append(errs, ValidationError{"ui.language", fmt.Sprintf("unsupported language '%s', must be ru or en", c.UI.Language)})
	}
	switch strings.ToLower(c.UI.Theme) {
	case "dark", "light":
	default:
		errs = append(errs, ValidationError{"ui.theme", fmt.Sprintf("invalid theme '%s', must be dark or light", c.UI.Theme)})
	}

	if c.Session.EncryptToken && filepath.Clean(c.Session.KeyPath) == filepath.Clean(c.Session.TokenPath) {
		errs = append(errs, ValidationError{"session.key_path", "must differ from session.token_path"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies DOCFLOW_* environment variables:
//   - DOCFLOW_API_URL: overrides api.base_url
//   - DOCFLOW_TOKEN_PATH: overrides session.token_path
//   - DOCFLOW_ENCRYPT_TOKEN: overrides session.encrypt_token
//   - DOCFLOW_POLL_INTERVAL: overrides notifications.poll_interval_secs
//   - DOCFLOW_LOG_LEVEL, DOCFLOW_LOG_FORMAT, DOCFLOW_LOG_FILE: logging.*
//   - DOCFLOW_LANGUAGE: overrides ui.language
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DOCFLOW_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("DOCFLOW_TOKEN_PATH"); v != "" {
		c.Session.TokenPath = v
	}
	if v := os.Getenv("DOCFLOW_ENCRYPT_TOKEN"); v != "" {
		c.Session.EncryptToken = parseBool(v)
	}
	if v := os.Getenv("DOCFLOW_POLL_INTERVAL"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Notifications.PollIntervalSecs = secs
		} else if d, err := time.ParseDuration(v); err == nil {
			c.Notifications.PollIntervalSecs = int(d / time.Second)
		}
	}
	if v := os.Getenv("DOCFLOW_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DOCFLOW_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("DOCFLOW_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("DOCFLOW_LANGUAGE"); v != "" {
		c.UI.Language = v
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes"
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Keys returns all configuration keys in dot notation.
func Keys() []string {
	return []string{
		"version",
		"api.base_url",
		"api.timeout_secs",
		"api.requests_per_second",
		"api.burst",
		"session.token_path",
		"session.encrypt_token",
		"session.key_path",
		"session.watch_token",
		"notifications.poll_interval_secs",
		"notifications.limit",
		"logging.level",
		"logging.format",
		"logging.file",
		"ui.language",
		"ui.theme",
	}
}

// Get retrieves a configuration value using dot notation (e.g., "api.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts snake_case or kebab-case to the Go field name,
// matched case-insensitively ("base_url" finds BaseURL).
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(part[:1]))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			field.SetBool(parseBool(strVal))
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

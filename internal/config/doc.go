// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for docflow.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - APIConfig: Backend base URL, timeout and client-side rate limit
//   - SessionConfig: Where the bearer token lives and whether it is sealed
//   - NotificationsConfig: Poll interval and page size
//   - LoggingConfig: slog level, format and destination
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (DOCFLOW_*)
//   - ~/.docflow/config.toml
//   - ~/.docflow/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	client := api.NewClient(cfg.API.BaseURL, creds, api.WithTimeout(cfg.API.Timeout()))
package config

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ultron.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, validation and hot reload.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - BackendConfig: Built-in backend URL, key and request limits
//   - PageConfig: Origin of the front-end and mixed-content policy
//   - MandalaConfig: Particle field and animation tuning
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (ULTRON_*)
//   - ~/.ultron/config.toml
//   - ~/.ultron/config.json
//   - Built-in defaults
//
// The backend values here are only the compiled-in layer of connectivity
// resolution; runtime overrides and persisted settings sit above them (see
// internal/connect).
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	stop, err := config.Watch(path, func(c *config.Config, err error) { ... })
package config

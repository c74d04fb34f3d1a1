// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
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
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/ultron-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ultron configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Backend defaults (lowest precedence layer of connectivity)
	Backend BackendConfig `toml:"backend" json:"backend"`

	// Page describes the front-end's own origin
	Page PageConfig `toml:"page" json:"page"`

	// Mandala animation tuning
	Mandala MandalaConfig `toml:"mandala" json:"mandala"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Log configuration
	Log LogConfig `toml:"log" json:"log"`

	// Storage configuration
	Storage StorageConfig `toml:"storage" json:"storage"`
}

// BackendConfig contains the built-in backend defaults and request limits.
type BackendConfig struct {
	// DefaultURL is the chat endpoint used when nothing overrides it
	DefaultURL string `toml:"default_url" json:"default_url"`
	// DefaultAPIKey is the shared client key used when nothing overrides it
	DefaultAPIKey string `toml:"default_api_key" json:"default_api_key"`
	// ChatTimeoutSecs bounds a single chat request
	ChatTimeoutSecs int `toml:"chat_timeout_secs" json:"chat_timeout_secs"`
	// ProbeTimeoutMs bounds a single health probe
	ProbeTimeoutMs int `toml:"probe_timeout_ms" json:"probe_timeout_ms"`
	// MaxResponseBytes caps response bodies
	MaxResponseBytes int64 `toml:"max_response_bytes" json:"max_response_bytes"`
	// VerifyIntervalSecs is the minimum spacing between re-verifications
	VerifyIntervalSecs int `toml:"verify_interval_secs" json:"verify_interval_secs"`
}

// PageConfig describes the front-end's own origin.
type PageConfig struct {
	// Origin of the front-end, e.g. "https://ultron.example". A https origin
	// makes the page secure.
	Origin string `toml:"origin" json:"origin"`
	// BlockMixedContent refuses plain http requests from a secure page
	BlockMixedContent bool `toml:"block_mixed_content" json:"block_mixed_content"`
}

// MandalaConfig tunes the particle field.
type MandalaConfig struct {
	Particles      int     `toml:"particles" json:"particles"`
	Rings          int     `toml:"rings" json:"rings"`
	FPS            int     `toml:"fps" json:"fps"`
	RadiusFraction float64 `toml:"radius_fraction" json:"radius_fraction"`
	LinkFactor     float64 `toml:"link_factor" json:"link_factor"`
	RepelStrength  float64 `toml:"repel_strength" json:"repel_strength"`
	// Easing is one of "inout", "linear", "cubic"
	Easing string `toml:"easing" json:"easing"`
	// MinThinkingMs is the minimum visible thinking duration
	MinThinkingMs int `toml:"min_thinking_ms" json:"min_thinking_ms"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// Markdown renders replies with glamour
	Markdown bool `toml:"markdown" json:"markdown"`
	// BannerSecs is how long success notes stay visible
	BannerSecs int `toml:"banner_secs" json:"banner_secs"`
	// Mouse enables pointer repulsion in the terminal
	Mouse bool `toml:"mouse" json:"mouse"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is a zerolog level name
	Level string `toml:"level" json:"level"`
	// File receives logs from the TUI and GUI. Empty means ~/.ultron/ultron.log.
	File string `toml:"file" json:"file"`
}

// StorageConfig contains settings storage configuration.
type StorageConfig struct {
	// Dir holds the settings database. Empty means ~/.ultron/settings.
	Dir string `toml:"dir" json:"dir"`
	// Ephemeral keeps settings in memory only
	Ephemeral bool `toml:"ephemeral" json:"ephemeral"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Backend: BackendConfig{
			DefaultURL:         "http://localhost:5001/api/chat",
			ChatTimeoutSecs:    30,
			ProbeTimeoutMs:     2500,
			MaxResponseBytes:   10 * 1024 * 1024,
			VerifyIntervalSecs: 1,
		},
		Page: PageConfig{
			BlockMixedContent: true,
		},
		Mandala: MandalaConfig{
			Particles:      180,
			Rings:          6,
			FPS:            30,
			RadiusFraction: 0.42,
			LinkFactor:     0.55,
			RepelStrength:  40,
			Easing:         "inout",
			MinThinkingMs:  1200,
		},
		UI: UIConfig{
			Theme:      "auto",
			Markdown:   true,
			BannerSecs: 6,
			Mouse:      true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ChatTimeout returns the chat request bound.
func (c *Config) ChatTimeout() time.Duration {
	return time.Duration(c.Backend.ChatTimeoutSecs) * time.Second
}

// ProbeTimeout returns the health probe bound.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Backend.ProbeTimeoutMs) * time.Millisecond
}

// MinThinking returns the minimum visible thinking duration.
func (c *Config) MinThinking() time.Duration {
	return time.Duration(c.Mandala.MinThinkingMs) * time.Millisecond
}

// BannerDuration returns how long success notes stay visible.
func (c *Config) BannerDuration() time.Duration {
	return time.Duration(c.UI.BannerSecs) * time.Second
}

// PageSecure reports whether the page origin uses https.
func (c *Config) PageSecure() bool {
	u, err := url.Parse(c.Page.Origin)
	return err == nil && strings.EqualFold(u.Scheme, "https")
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the ultron configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".ultron"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LogPath returns the effective log file path.
func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	dir, err := ConfigDir()
	if err != nil {
		return "ultron.log"
	}
	return filepath.Join(dir, "ultron.log")
}

// ensureSecurePermissions narrows config files to 0600. They may hold an API key.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default location.
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
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file. Keys missing from
// the file keep their default values.
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

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) finish() error {
	c.ApplyEnvOverrides()
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadTOML decodes a TOML file on top of cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not ensure secure config permissions")
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file on top of cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not ensure secure config permissions")
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

// SaveTOML writes the configuration as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var sb strings.Builder
	sb.WriteString("# ultron configuration file\n")
	sb.WriteString("# Generated by ultron - edit with care\n")
	sb.WriteString("#\n")
	sb.WriteString("# Environment variables ULTRON_* override values here.\n\n")

	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, []byte(sb.String()), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration as JSON with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
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
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// ==========================================================================
	// Backend
	// ==========================================================================

	if msg := checkHTTPURL(c.Backend.DefaultURL); msg != "" {
		errs = append(errs, ValidationError{Field: "backend.default_url", Message: msg})
	}
	if c.Backend.ChatTimeoutSecs < 1 || c.Backend.ChatTimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "backend.chat_timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", c.Backend.ChatTimeoutSecs),
		})
	}
	if c.Backend.ProbeTimeoutMs < 100 || c.Backend.ProbeTimeoutMs > 60000 {
		errs = append(errs, ValidationError{
			Field:   "backend.probe_timeout_ms",
			Message: fmt.Sprintf("must be between 100 and 60000, got %d", c.Backend.ProbeTimeoutMs),
		})
	}
	if c.Backend.MaxResponseBytes <= 0 {
		errs = append(errs, ValidationError{Field: "backend.max_response_bytes", Message: "must be positive"})
	}
	if c.Backend.VerifyIntervalSecs < 0 {
		errs = append(errs, ValidationError{Field: "backend.verify_interval_secs", Message: "must not be negative"})
	}

	// ==========================================================================
	// Page
	// ==========================================================================

	if c.Page.Origin != "" {
		if msg := checkHTTPURL(c.Page.Origin); msg != "" {
			errs = append(errs, ValidationError{Field: "page.origin", Message: msg})
		}
	}

	// ==========================================================================
	// Mandala
	// ==========================================================================

	if c.Mandala.Particles < 1 || c.Mandala.Particles > 5000 {
		errs = append(errs, ValidationError{
			Field:   "mandala.particles",
			Message: fmt.Sprintf("must be between 1 and 5000, got %d", c.Mandala.Particles),
		})
	}
	if c.Mandala.Rings < 1 || c.Mandala.Rings > 64 {
		errs = append(errs, ValidationError{
			Field:   "mandala.rings",
			Message: fmt.Sprintf("must be between 1 and 64, got %d", c.Mandala.Rings),
		})
	}
	if c.Mandala.Rings > c.Mandala.Particles {
		errs = append(errs, ValidationError{Field: "mandala.rings", Message: "must not exceed mandala.particles"})
	}
	if c.Mandala.FPS < 1 || c.Mandala.FPS > 240 {
		errs = append(errs, ValidationError{
			Field:   "mandala.fps",
			Message: fmt.Sprintf("must be between 1 and 240, got %d", c.Mandala.FPS),
		})
	}
	if c.Mandala.RadiusFraction <= 0 || c.Mandala.RadiusFraction > 1 {
		errs = append(errs, ValidationError{Field: "mandala.radius_fraction", Message: "must be in (0, 1]"})
	}
	if c.Mandala.LinkFactor <= 0 || c.Mandala.LinkFactor > 2 {
		errs = append(errs, ValidationError{Field: "mandala.link_factor", Message: "must be in (0, 2]"})
	}
	validEasing := map[string]bool{"inout": true, "linear": true, "cubic": true}
	if !validEasing[c.Mandala.Easing] {
		errs = append(errs, ValidationError{
			Field:   "mandala.easing",
			Message: fmt.Sprintf("invalid easing '%s', must be one of: inout, linear, cubic", c.Mandala.Easing),
		})
	}
	if c.Mandala.MinThinkingMs < 0 {
		errs = append(errs, ValidationError{Field: "mandala.min_thinking_ms", Message: "must not be negative"})
	}

	// ==========================================================================
	// UI / Log
	// ==========================================================================

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}
	if c.UI.BannerSecs < 0 {
		errs = append(errs, ValidationError{Field: "ui.banner_secs", Message: "must not be negative"})
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s'", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func checkHTTPURL(raw string) string {
	if raw == "" {
		return "must not be empty"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Sprintf("scheme must be http or https, got '%s'", u.Scheme)
	}
	if u.Host == "" {
		return "missing host"
	}
	return ""
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Version == "" {
		c.Version = d.Version
	}
	if c.Backend.DefaultURL == "" {
		c.Backend.DefaultURL = d.Backend.DefaultURL
	}
	if c.Backend.ChatTimeoutSecs == 0 {
		c.Backend.ChatTimeoutSecs = d.Backend.ChatTimeoutSecs
	}
	if c.Backend.ProbeTimeoutMs == 0 {
		c.Backend.ProbeTimeoutMs = d.Backend.ProbeTimeoutMs
	}
	if c.Backend.MaxResponseBytes == 0 {
		c.Backend.MaxResponseBytes = d.Backend.MaxResponseBytes
	}
	if c.Mandala.Particles == 0 {
		c.Mandala.Particles = d.Mandala.Particles
	}
	if c.Mandala.Rings == 0 {
		c.Mandala.Rings = d.Mandala.Rings
	}
	if c.Mandala.FPS == 0 {
		c.Mandala.FPS = d.Mandala.FPS
	}
	if c.Mandala.RadiusFraction == 0 {
		c.Mandala.RadiusFraction = d.Mandala.RadiusFraction
	}
	if c.Mandala.LinkFactor == 0 {
		c.Mandala.LinkFactor = d.Mandala.LinkFactor
	}
	if c.Mandala.Easing == "" {
		c.Mandala.Easing = d.Mandala.Easing
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - ULTRON_DEFAULT_BACKEND: overrides backend.default_url
//   - ULTRON_DEFAULT_API_KEY: overrides backend.default_api_key
//   - ULTRON_PAGE_ORIGIN: overrides page.origin
//   - ULTRON_LOG_LEVEL: overrides log.level
//   - ULTRON_CHAT_TIMEOUT: overrides backend.chat_timeout_secs ("45" or "45s")
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ULTRON_DEFAULT_BACKEND"); v != "" {
		c.Backend.DefaultURL = v
	}
	if v := os.Getenv("ULTRON_DEFAULT_API_KEY"); v != "" {
		c.Backend.DefaultAPIKey = v
	}
	if v := os.Getenv("ULTRON_PAGE_ORIGIN"); v != "" {
		c.Page.Origin = v
	}
	if v := os.Getenv("ULTRON_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ULTRON_CHAT_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Backend.ChatTimeoutSecs = secs
		} else if d, err := time.ParseDuration(v); err == nil {
			c.Backend.ChatTimeoutSecs = int(d / time.Second)
		}
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "mandala.rings").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "mandala.rings").
// String values are converted to the field type.
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
	if key == "" {
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

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
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
			lower := strings.ToLower(strVal)
			field.SetBool(strVal == "1" || lower == "true" || lower == "yes")
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

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"backend.default_url",
		"backend.default_api_key",
		"backend.chat_timeout_secs",
		"backend.probe_timeout_ms",
		"backend.max_response_bytes",
		"backend.verify_interval_secs",
		"page.origin",
		"page.block_mixed_content",
		"mandala.particles",
		"mandala.rings",
		"mandala.fps",
		"mandala.radius_fraction",
		"mandala.link_factor",
		"mandala.repel_strength",
		"mandala.easing",
		"mandala.min_thinking_ms",
		"ui.theme",
		"ui.markdown",
		"ui.banner_secs",
		"ui.mouse",
		"log.level",
		"log.file",
		"storage.dir",
		"storage.ephemeral",
	}
}

// =============================================================================
// COPY / DISPLAY
// =============================================================================

// Clone returns a copy of the configuration. Config holds no reference
// types, so a value copy is deep.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the config as JSON with the API key redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Backend.DefaultAPIKey != "" {
		safe.Backend.DefaultAPIKey = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

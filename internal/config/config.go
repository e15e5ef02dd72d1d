// Package config handles configuration for purrfect.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/diogo/purrfect/internal/models"
)

// Backends
const (
	BackendProxy  = "proxy"  // POST to the guru endpoint
	BackendDirect = "direct" // call the Gemini API with an API key
)

// DefaultTimeoutMs is the guru request timeout
const DefaultTimeoutMs = 30_000

// Environment variables read by LoadConfig
const (
	EnvBaseURL         = "PURRFECT_BASE_URL"
	EnvClientKey       = "GURU_CLIENT_KEY"
	EnvPublicClientKey = "NEXT_PUBLIC_GURU_CLIENT_KEY"
	EnvAPIKey          = "API_KEY"
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`             // "dark", "light", "notty" or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`      // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"` // Preserve original line breaks
}

// Config represents the user configuration
type Config struct {
	// Backend selects the chat transport: "proxy" or "direct".
	// Only one is active per run.
	Backend string `json:"backend"`
	// BaseURL is where the guru proxy is served; the client posts to BaseURL + /api/guru.
	BaseURL string `json:"base_url"`
	// ClientKey is sent as x-guru-client-key when set.
	ClientKey string `json:"client_key,omitempty"`
	TimeoutMs int    `json:"timeout_ms"`
	// APIKey authorizes the direct backend, competitor analysis and product descriptions.
	APIKey          string         `json:"api_key,omitempty"`
	Model           string         `json:"model"`
	Verbose         bool           `json:"verbose"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Backend:         BackendProxy,
		BaseURL:         models.DefaultBaseURL,
		TimeoutMs:       DefaultTimeoutMs,
		Model:           models.DefaultModel.Name,
		Verbose:         false,
		CopyToClipboard: false,
		Markdown:        DefaultMarkdownConfig(),
	}
}

// Timeout returns the request timeout as a duration
func (c Config) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return DefaultTimeoutMs * time.Millisecond
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Validate checks that the configuration can drive the selected backend
func (c Config) Validate() error {
	switch c.Backend {
	case BackendProxy:
		if strings.TrimSpace(c.BaseURL) == "" {
			return fmt.Errorf("base_url is required for the proxy backend")
		}
	case BackendDirect:
		if strings.TrimSpace(c.APIKey) == "" {
			return fmt.Errorf("api_key is required for the direct backend (set %s)", EnvAPIKey)
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendProxy, BackendDirect)
	}
	return nil
}

// ApplyEnv overlays environment values onto cfg.
// Values already present in the file win over the environment.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if cfg.ClientKey == "" {
		cfg.ClientKey = firstNonEmpty(getenv(EnvClientKey), getenv(EnvPublicClientKey))
	}
	if cfg.APIKey == "" {
		cfg.APIKey = firstNonEmpty(getenv(EnvAPIKey), getenv(EnvGeminiAPIKey))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".purrfect"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// 0o700: the config may hold keys
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadFile loads the configuration from disk without the environment overlay
func LoadFile() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadConfig loads the configuration from disk and applies the environment
func LoadConfig() (Config, error) {
	cfg, err := LoadFile()
	ApplyEnv(&cfg, os.Getenv)
	return cfg, err
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Keys returns the settable configuration keys in display order
func Keys() []string {
	keys := []string{
		"backend", "base_url", "client_key", "timeout_ms", "api_key",
		"model", "verbose", "copy_to_clipboard", "markdown.style",
	}
	sort.Strings(keys)
	return keys
}

// Get returns the string form of a configuration key
func (c Config) Get(key string) (string, error) {
	switch key {
	case "backend":
		return c.Backend, nil
	case "base_url":
		return c.BaseURL, nil
	case "client_key":
		return c.ClientKey, nil
	case "timeout_ms":
		return strconv.Itoa(c.TimeoutMs), nil
	case "api_key":
		return c.APIKey, nil
	case "model":
		return c.Model, nil
	case "verbose":
		return strconv.FormatBool(c.Verbose), nil
	case "copy_to_clipboard":
		return strconv.FormatBool(c.CopyToClipboard), nil
	case "markdown.style":
		return c.Markdown.Style, nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}

// Set parses value and assigns it to the configuration key
func (c *Config) Set(key, value string) error {
	switch key {
	case "backend":
		if value != BackendProxy && value != BackendDirect {
			return fmt.Errorf("backend must be %s or %s", BackendProxy, BackendDirect)
		}
		c.Backend = value
	case "base_url":
		c.BaseURL = strings.TrimRight(value, "/")
	case "client_key":
		c.ClientKey = value
	case "timeout_ms":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("timeout_ms must be a positive integer")
		}
		c.TimeoutMs = n
	case "api_key":
		c.APIKey = value
	case "model":
		c.Model = models.ModelFromName(value).Name
	case "verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("verbose must be true or false")
		}
		c.Verbose = b
	case "copy_to_clipboard":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("copy_to_clipboard must be true or false")
		}
		c.CopyToClipboard = b
	case "markdown.style":
		c.Markdown.Style = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// MaskSecret hides all but the last four characters of a secret
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

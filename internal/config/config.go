package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/styrcan/pulse/internal/errors"
)

// Config holds the client configuration for the Pulse platform.
type Config struct {
	// APIBaseURL is the base URL of the Pulse REST API
	APIBaseURL string `yaml:"api_base_url"`

	// WebBaseURL is the base URL of the Pulse web application,
	// used when building guarded deep links
	WebBaseURL string `yaml:"web_base_url"`

	// WebSocketURL is the notification channel endpoint.
	// Empty means derive it from APIBaseURL.
	WebSocketURL string `yaml:"websocket_url,omitempty"`

	// RequestTimeoutMs bounds every REST call
	RequestTimeoutMs int `yaml:"request_timeout_ms"`

	Realtime RealtimeConfig `yaml:"realtime"`
	Log      LogConfig      `yaml:"log"`
}

// RealtimeConfig controls the notification channel reconnect policy.
type RealtimeConfig struct {
	// Reconnect enables automatic reconnection after transport loss
	Reconnect bool `yaml:"reconnect"`

	// ReconnectBaseMs is the first reconnect delay
	ReconnectBaseMs int `yaml:"reconnect_base_ms"`

	// ReconnectMaxMs caps the exponential backoff
	ReconnectMaxMs int `yaml:"reconnect_max_ms"`

	// KeepaliveMs is the ping period while connected
	KeepaliveMs int `yaml:"keepalive_ms"`
}

// LogConfig controls logger verbosity and format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	apiURL := os.Getenv("PULSE_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8000"
	}

	webURL := os.Getenv("PULSE_WEB_URL")
	if webURL == "" {
		webURL = "http://localhost:3000"
	}

	return &Config{
		APIBaseURL:       apiURL,
		WebBaseURL:       webURL,
		RequestTimeoutMs: 30000,
		Realtime: RealtimeConfig{
			Reconnect:       true,
			ReconnectBaseMs: 3000,  // First retry after 3 seconds
			ReconnectMaxMs:  60000, // Backoff capped at 1 minute
			KeepaliveMs:     30000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a YAML file, applying defaults
// for any omitted fields.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigNotFound, fmt.Sprintf("read config file: %s", path), err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.NewFileUnmarshalError(path, "YAML", err)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadOrDefault loads the config file if it exists, otherwise returns defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = filepath.Join(HomeDir(), "config.yaml")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// ValidateConfig validates a configuration
func ValidateConfig(config *Config) error {
	if config.APIBaseURL == "" {
		return errors.NewConfigInvalidError("api_base_url must not be empty")
	}
	if !strings.HasPrefix(config.APIBaseURL, "http://") && !strings.HasPrefix(config.APIBaseURL, "https://") {
		return errors.NewConfigInvalidError("api_base_url must be an http(s) URL")
	}
	if config.RequestTimeoutMs < 0 {
		return errors.NewConfigInvalidError("request_timeout_ms must be non-negative")
	}
	if config.Realtime.ReconnectBaseMs <= 0 {
		return errors.NewConfigInvalidError("realtime.reconnect_base_ms must be positive")
	}
	if config.Realtime.ReconnectMaxMs < config.Realtime.ReconnectBaseMs {
		return errors.NewConfigInvalidError("realtime.reconnect_max_ms must be >= reconnect_base_ms")
	}
	if config.Realtime.KeepaliveMs <= 0 {
		return errors.NewConfigInvalidError("realtime.keepalive_ms must be positive")
	}
	return nil
}

// NotificationsURL returns the WebSocket endpoint for the notification channel.
func (c *Config) NotificationsURL() string {
	if c.WebSocketURL != "" {
		return c.WebSocketURL
	}

	url := c.APIBaseURL
	switch {
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return strings.TrimSuffix(url, "/") + "/api/notifications/ws"
}

// HomeDir returns the pulse state directory.
// PULSE_HOME overrides the default of ~/.pulse.
func HomeDir() string {
	if home := os.Getenv("PULSE_HOME"); home != "" {
		return home
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return ".pulse"
	}
	return filepath.Join(userHome, ".pulse")
}

// Package config holds the terminal client's persistent settings.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config is the persistent client configuration
type Config struct {
	// Server connection
	Server ServerConfig `json:"server"`

	// List screen behaviour
	Lists ListConfig `json:"lists"`

	// UI preferences
	UI UIConfig `json:"ui"`

	// Locations remembers the last location of each screen, keyed by kind
	// ("leave" -> "limit=5&page=2").
	Locations map[string]string `json:"locations,omitempty"`
}

// ServerConfig points the client at the HR API.
type ServerConfig struct {
	URL              string `json:"url"`
	Token            string `json:"token,omitempty"`
	RequestTimeoutMs int    `json:"request_timeout_ms"`
	RequestsPerSec   int    `json:"requests_per_sec"` // client-side limiter, 0 = unlimited
}

// ListConfig tunes every remote collection view.
type ListConfig struct {
	PageSize       int `json:"page_size"`
	DebounceMs     int `json:"debounce_ms"`
	PollIntervalMs int `json:"poll_interval_ms"` // 0 disables the change watcher
	ToastMs        int `json:"toast_ms"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	Theme      string `json:"theme"`
	DefaultTab string `json:"default_tab"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:              "http://localhost:8080",
			RequestTimeoutMs: 10000,
			RequestsPerSec:   10,
		},
		Lists: ListConfig{
			PageSize:       5,
			DebounceMs:     800,
			PollIntervalMs: 15000,
			ToastMs:        4000,
		},
		UI: UIConfig{
			Theme:      "dark",
			DefaultTab: "employees",
		},
		Locations: map[string]string{},
	}
}

// Dir returns the client's data directory.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".peopledesk")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(Dir(), "config.json")
}

// Load reads config from ConfigPath, or returns defaults.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads config from path. A missing file yields defaults; zero
// values in a partial file are filled from defaults. Environment overrides
// are applied last.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnv()
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		cfg = DefaultConfig()
	}
	cfg.fillDefaults()
	cfg.ApplyEnv()
	return cfg, nil
}

// Save writes config to ConfigPath.
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes config to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600) // holds the API token
}

// ApplyEnv overrides the server connection from PEOPLEDESK_URL and
// PEOPLEDESK_TOKEN.
func (c *Config) ApplyEnv() {
	if u := os.Getenv("PEOPLEDESK_URL"); u != "" {
		c.Server.URL = u
	}
	if tok := os.Getenv("PEOPLEDESK_TOKEN"); tok != "" {
		c.Server.Token = tok
	}
}

func (c *Config) fillDefaults() {
	d := DefaultConfig()
	if c.Server.URL == "" {
		c.Server.URL = d.Server.URL
	}
	if c.Server.RequestTimeoutMs <= 0 {
		c.Server.RequestTimeoutMs = d.Server.RequestTimeoutMs
	}
	if c.Lists.PageSize <= 0 {
		c.Lists.PageSize = d.Lists.PageSize
	}
	if c.Lists.DebounceMs <= 0 {
		c.Lists.DebounceMs = d.Lists.DebounceMs
	}
	if c.Lists.ToastMs <= 0 {
		c.Lists.ToastMs = d.Lists.ToastMs
	}
	if c.UI.DefaultTab == "" {
		c.UI.DefaultTab = d.UI.DefaultTab
	}
	if c.Locations == nil {
		c.Locations = map[string]string{}
	}
}

// RequestTimeout returns the per-read timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutMs) * time.Millisecond
}

// Debounce returns the search quiet period.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Lists.DebounceMs) * time.Millisecond
}

// PollInterval returns the change watcher interval; zero means disabled.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Lists.PollIntervalMs) * time.Millisecond
}

// ToastDuration returns how long notifications stay on screen.
func (c *Config) ToastDuration() time.Duration {
	return time.Duration(c.Lists.ToastMs) * time.Millisecond
}

// RememberLocation records the last location of a screen.
func (c *Config) RememberLocation(kind, location string) {
	if c.Locations == nil {
		c.Locations = map[string]string{}
	}
	c.Locations[kind] = location
}

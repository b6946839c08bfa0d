// Package config loads hostline's configuration.
//
// Configuration lives in a YAML file (default ~/.hostline/config.yaml). A
// missing file means "all defaults". A handful of HOSTLINE_* environment
// variables override the file so containers can be configured without one.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HendryAvila/hostline/internal/backend"
	"github.com/HendryAvila/hostline/internal/dialogue"
	"github.com/HendryAvila/hostline/internal/journal"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	// DirName is the per-user directory holding config and data.
	DirName = ".hostline"

	// FileName is the config file inside DirName.
	FileName = "config.yaml"
)

// Environment overrides.
const (
	EnvBackendURL = "HOSTLINE_BACKEND_URL"
	EnvDataDir    = "HOSTLINE_DATA_DIR"
	EnvHTTPAddr   = "HOSTLINE_HTTP_ADDR"
	EnvLogLevel   = "HOSTLINE_LOG_LEVEL"
)

// Config is the full hostline configuration.
type Config struct {
	Backend    BackendConfig    `yaml:"backend"`
	Restaurant RestaurantConfig `yaml:"restaurant"`
	Dialogue   DialogueConfig   `yaml:"dialogue"`
	Sessions   SessionsConfig   `yaml:"sessions"`
	Journal    JournalConfig    `yaml:"journal"`
	HTTP       HTTPConfig       `yaml:"http"`
	Log        LogConfig        `yaml:"log"`
}

// BackendConfig locates the restaurant REST backend.
type BackendConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	MenuLimit int           `yaml:"menu_limit"`
}

// RestaurantConfig is the wording used in replies and the reservation window.
type RestaurantConfig struct {
	Name       string   `yaml:"name"`
	Address    string   `yaml:"address"`
	Hours      string   `yaml:"hours"`
	Parking    string   `yaml:"parking"`
	Categories []string `yaml:"categories"`
	Opens      string   `yaml:"opens"`
	Closes     string   `yaml:"closes"`
}

// DialogueConfig toggles optional conversation behavior.
type DialogueConfig struct {
	CheckAvailability bool `yaml:"check_availability"`
}

// SessionsConfig controls in-memory session lifetime.
type SessionsConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// JournalConfig controls the SQLite call journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	DataDir string `yaml:"data_dir"`
}

// HTTPConfig configures the HTTP API.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Dir returns ~/.hostline.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, DirName)
}

// DefaultPath returns ~/.hostline/config.yaml.
func DefaultPath() string {
	return filepath.Join(Dir(), FileName)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	p := dialogue.DefaultProfile()
	return &Config{
		Backend: BackendConfig{
			BaseURL:   "http://localhost:3000",
			Timeout:   backend.DefaultTimeout,
			MenuLimit: backend.DefaultMenuLimit,
		},
		Restaurant: RestaurantConfig{
			Name:       p.Name,
			Address:    p.SpokenAddress,
			Hours:      p.SpokenHours,
			Parking:    p.ParkingInfo,
			Categories: p.MenuCategories,
			Opens:      "06:00",
			Closes:     "23:00",
		},
		Sessions: SessionsConfig{
			IdleTimeout:   30 * time.Minute,
			SweepInterval: time.Minute,
		},
		Journal: JournalConfig{
			Enabled: true,
			DataDir: Dir(),
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path means DefaultPath. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvBackendURL); v != "" {
		c.Backend.BaseURL = v
	}
	if v := getenv(EnvDataDir); v != "" {
		c.Journal.DataDir = v
	}
	if v := getenv(EnvHTTPAddr); v != "" {
		c.HTTP.Addr = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: backend.base_url %q must be an http(s) URL", c.Backend.BaseURL)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("config: backend.timeout must be positive, got %s", c.Backend.Timeout)
	}
	if c.Backend.MenuLimit <= 0 {
		return fmt.Errorf("config: backend.menu_limit must be positive, got %d", c.Backend.MenuLimit)
	}
	if _, err := c.Window(); err != nil {
		return fmt.Errorf("config: restaurant: %w", err)
	}
	if strings.TrimSpace(c.Restaurant.Name) == "" {
		return errors.New("config: restaurant.name is required")
	}
	if c.Sessions.IdleTimeout <= 0 {
		return fmt.Errorf("config: sessions.idle_timeout must be positive, got %s", c.Sessions.IdleTimeout)
	}
	if c.Sessions.SweepInterval <= 0 {
		return fmt.Errorf("config: sessions.sweep_interval must be positive, got %s", c.Sessions.SweepInterval)
	}
	if c.Journal.Enabled && c.Journal.DataDir == "" {
		return errors.New("config: journal.data_dir is required when the journal is enabled")
	}
	if _, err := c.LogLevel(); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	return nil
}

// ─── Derived settings ────────────────────────────────────────────────────────

// Window is the reservation window from restaurant.opens/closes.
func (c *Config) Window() (backend.Window, error) {
	return backend.ParseWindow(c.Restaurant.Opens, c.Restaurant.Closes)
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (zerolog.Level, error) {
	return zerolog.ParseLevel(strings.ToLower(c.Log.Level))
}

// Profile is the restaurant wording for the dialogue agent. Empty fields
// fall back to the built-in profile.
func (c *Config) Profile() dialogue.Profile {
	p := dialogue.DefaultProfile()
	r := c.Restaurant
	if r.Name != "" {
		p.Name = r.Name
	}
	if r.Address != "" {
		p.SpokenAddress = r.Address
	}
	if r.Hours != "" {
		p.SpokenHours = r.Hours
	}
	if r.Parking != "" {
		p.ParkingInfo = r.Parking
	}
	if len(r.Categories) > 0 {
		p.MenuCategories = r.Categories
	}
	return p
}

// ClientConfig is the backend client configuration.
func (c *Config) ClientConfig() (backend.ClientConfig, error) {
	w, err := c.Window()
	if err != nil {
		return backend.ClientConfig{}, err
	}
	return backend.ClientConfig{
		BaseURL:   c.Backend.BaseURL,
		Timeout:   c.Backend.Timeout,
		MenuLimit: c.Backend.MenuLimit,
		Window:    w,
	}, nil
}

// JournalStore is the journal store configuration.
func (c *Config) JournalStore() journal.Config {
	jc := journal.DefaultConfig()
	jc.DataDir = c.Journal.DataDir
	return jc
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/HendryAvila/hostline/internal/backend"
	"github.com/rs/zerolog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// --- Load ---

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	def := Default()
	if cfg.Backend.BaseURL != def.Backend.BaseURL {
		t.Errorf("BaseURL = %s, want %s", cfg.Backend.BaseURL, def.Backend.BaseURL)
	}
	if cfg.Sessions.IdleTimeout != 30*time.Minute {
		t.Errorf("IdleTimeout = %s, want 30m", cfg.Sessions.IdleTimeout)
	}
	if !cfg.Journal.Enabled {
		t.Error("journal should be enabled by default")
	}
	if cfg.Dialogue.CheckAvailability {
		t.Error("availability check should be off by default")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: https://api.example.com
  timeout: 2s
restaurant:
  name: Blue Door Diner
  opens: "07:00"
  closes: "22:00"
dialogue:
  check_availability: true
sessions:
  idle_timeout: 10m
journal:
  enabled: false
log:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Backend.BaseURL != "https://api.example.com" || cfg.Backend.Timeout != 2*time.Second {
		t.Errorf("backend = %+v", cfg.Backend)
	}
	if cfg.Backend.MenuLimit != backend.DefaultMenuLimit {
		t.Errorf("MenuLimit = %d, want default kept", cfg.Backend.MenuLimit)
	}
	if !cfg.Dialogue.CheckAvailability || cfg.Journal.Enabled {
		t.Errorf("dialogue=%+v journal=%+v", cfg.Dialogue, cfg.Journal)
	}
	if cfg.Sessions.IdleTimeout != 10*time.Minute {
		t.Errorf("IdleTimeout = %s", cfg.Sessions.IdleTimeout)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %s, want default kept", cfg.HTTP.Addr)
	}

	w, err := cfg.Window()
	if err != nil || w != (backend.Window{Open: 7 * 60, Close: 22 * 60}) {
		t.Errorf("Window = %+v, %v", w, err)
	}
	if lvl, _ := cfg.LogLevel(); lvl != zerolog.DebugLevel {
		t.Errorf("LogLevel = %s, want debug", lvl)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "backend:\n  base_url: http://file:3000\n")
	t.Setenv(EnvBackendURL, "http://env:4000")
	t.Setenv(EnvHTTPAddr, "127.0.0.1:9999")
	t.Setenv(EnvDataDir, "/tmp/hostline-test")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Backend.BaseURL != "http://env:4000" {
		t.Errorf("BaseURL = %s", cfg.Backend.BaseURL)
	}
	if cfg.HTTP.Addr != "127.0.0.1:9999" || cfg.Journal.DataDir != "/tmp/hostline-test" || cfg.Log.Level != "warn" {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "backend: [not, a, map")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "config: parse") {
		t.Errorf("Load() error = %v, want parse error", err)
	}
}

// --- Validate ---

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"no scheme", func(c *Config) { c.Backend.BaseURL = "localhost:3000" }, "base_url"},
		{"ftp", func(c *Config) { c.Backend.BaseURL = "ftp://x" }, "base_url"},
		{"zero timeout", func(c *Config) { c.Backend.Timeout = 0 }, "timeout"},
		{"zero limit", func(c *Config) { c.Backend.MenuLimit = 0 }, "menu_limit"},
		{"inverted window", func(c *Config) { c.Restaurant.Opens, c.Restaurant.Closes = "23:00", "06:00" }, "restaurant"},
		{"bad clock", func(c *Config) { c.Restaurant.Opens = "6am" }, "restaurant"},
		{"no name", func(c *Config) { c.Restaurant.Name = " " }, "restaurant.name"},
		{"idle timeout", func(c *Config) { c.Sessions.IdleTimeout = -time.Second }, "idle_timeout"},
		{"sweep interval", func(c *Config) { c.Sessions.SweepInterval = 0 }, "sweep_interval"},
		{"journal dir", func(c *Config) { c.Journal.DataDir = "" }, "data_dir"},
		{"journal off", func(c *Config) { c.Journal.Enabled, c.Journal.DataDir = false, "" }, ""},
		{"log level", func(c *Config) { c.Log.Level = "chatty" }, "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

// --- Derived settings ---

func TestProfile_FallsBackPerField(t *testing.T) {
	cfg := Default()
	cfg.Restaurant.Name = "Blue Door Diner"
	cfg.Restaurant.Parking = ""
	cfg.Restaurant.Categories = nil

	p := cfg.Profile()
	if p.Name != "Blue Door Diner" {
		t.Errorf("Name = %s", p.Name)
	}
	if !strings.Contains(p.ParkingInfo, "street parking") {
		t.Errorf("ParkingInfo = %q, want built-in text", p.ParkingInfo)
	}
	if len(p.MenuCategories) == 0 {
		t.Error("categories should fall back to the built-in list")
	}
}

func TestClientConfig(t *testing.T) {
	cfg := Default()
	cc, err := cfg.ClientConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cc.Window != backend.DefaultWindow {
		t.Errorf("Window = %+v, want %+v", cc.Window, backend.DefaultWindow)
	}
	if cc.Timeout != backend.DefaultTimeout || cc.BaseURL != cfg.Backend.BaseURL {
		t.Errorf("ClientConfig = %+v", cc)
	}
}

func TestJournalStore(t *testing.T) {
	cfg := Default()
	cfg.Journal.DataDir = "/var/lib/hostline"
	if got := cfg.JournalStore().DataDir; got != "/var/lib/hostline" {
		t.Errorf("DataDir = %s", got)
	}
}

func TestDefaultPath(t *testing.T) {
	p := DefaultPath()
	if filepath.Base(p) != FileName || filepath.Base(filepath.Dir(p)) != DirName {
		t.Errorf("DefaultPath = %s", p)
	}
}

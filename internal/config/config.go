// Package config loads the agentdeck configuration from a TOML file with
// environment overrides and built-in defaults.
//
// Lookup order:
//   - path given on the command line
//   - ~/.config/agentdeck/config.toml
//   - built-in defaults
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the complete agentdeck configuration.
type Config struct {
	// Backend connection
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`

	// Poll cadence
	Poll PollConfig `toml:"poll"`

	// UI behaviour
	UI UIConfig `toml:"ui"`
}

// PollConfig tunes the adaptive polling loop.
type PollConfig struct {
	// ShortInterval is used while recent polls reported new content.
	ShortInterval duration `toml:"short_interval"`
	// LongInterval is the idle cadence.
	LongInterval duration `toml:"long_interval"`
	// Timeout bounds a single poll round-trip.
	Timeout duration `toml:"timeout"`
}

// UIConfig tunes transcript behaviour.
type UIConfig struct {
	// ScrollTolerance is how many lines from the bottom still count as
	// pinned, absorbing partial-line layouts.
	ScrollTolerance int `toml:"scroll_tolerance"`
	// AltScreen toggles the alternate screen buffer.
	AltScreen bool `toml:"alt_screen"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL: "http://localhost:50001",
		Poll: PollConfig{
			ShortInterval: duration(50 * time.Millisecond),
			LongInterval:  duration(400 * time.Millisecond),
			Timeout:       duration(15 * time.Second),
		},
		UI: UIConfig{
			ScrollTolerance: 2,
			AltScreen:       true,
		},
	}
}

// Load reads configuration from path, or from the default location when path
// is empty. A missing file yields defaults. AGENTDECK_URL and
// AGENTDECK_API_KEY override the file in either case.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		base, err := os.UserConfigDir()
		if err == nil {
			path = filepath.Join(base, "agentdeck", "config.toml")
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return cfg, fmt.Errorf("config: load %s: %w", path, err)
			}
		}
	}
	if env := os.Getenv("AGENTDECK_URL"); env != "" {
		cfg.BaseURL = env
	}
	if env := os.Getenv("AGENTDECK_API_KEY"); env != "" {
		cfg.APIKey = env
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	parsed, err := url.Parse(c.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: invalid base_url %q", c.BaseURL)
	}
	if c.Poll.ShortInterval <= 0 || c.Poll.LongInterval <= 0 {
		return fmt.Errorf("config: poll intervals must be positive")
	}
	if c.Poll.ShortInterval > c.Poll.LongInterval {
		return fmt.Errorf("config: short_interval must not exceed long_interval")
	}
	if c.UI.ScrollTolerance < 0 {
		return fmt.Errorf("config: scroll_tolerance must not be negative")
	}
	return nil
}

// duration adds TOML text parsing ("250ms", "2s") to time.Duration.
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Std converts to the standard library type.
func (d duration) Std() time.Duration {
	return time.Duration(d)
}

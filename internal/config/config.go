// Package config loads the server configuration from the environment.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the complete runtime configuration.
type Config struct {
	// Port is kept for hosts that only hand out a port number.
	Port     string `env:"PORT" envDefault:"8080"`
	HTTPAddr string `env:"SHOWCASE_HTTP_ADDR"`
	GinMode  string `env:"GIN_MODE" envDefault:"release"`
	LogLevel string `env:"SHOWCASE_LOG_LEVEL" envDefault:"info"`

	// AnalyticsDB is the sqlite file for visitor analytics. Empty disables
	// analytics and the admin area.
	AnalyticsDB         string        `env:"SHOWCASE_ANALYTICS_DB"`
	VisitorRetention    time.Duration `env:"SHOWCASE_VISITOR_RETENTION" envDefault:"8760h"`
	CleanupInterval     time.Duration `env:"SHOWCASE_CLEANUP_INTERVAL" envDefault:"24h"`
	AdminUsername       string        `env:"ADMIN_USERNAME"`
	AdminPassword       string        `env:"ADMIN_PASSWORD"`
	OTelEndpoint        string        `env:"SHOWCASE_OTEL_ENDPOINT"`
	ContactSubmit       time.Duration `env:"SHOWCASE_CONTACT_SUBMIT_DELAY" envDefault:"1500ms"`
	ContactSuccess      time.Duration `env:"SHOWCASE_CONTACT_SUCCESS_DELAY" envDefault:"2000ms"`
	HeroGateDelay       time.Duration `env:"SHOWCASE_HERO_DELAY"`
	ProjectGateDelay    time.Duration `env:"SHOWCASE_PROJECT_DELAY"`
	MentorshipGateDelay time.Duration `env:"SHOWCASE_MENTORSHIP_DELAY"`
}

// Load parses the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses vars instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Addr returns the listen address. SHOWCASE_HTTP_ADDR wins over PORT.
func (c Config) Addr() string {
	if addr := strings.TrimSpace(c.HTTPAddr); addr != "" {
		return addr
	}
	return net.JoinHostPort("", c.Port)
}

// AnalyticsEnabled reports whether the visitor store should be opened.
func (c Config) AnalyticsEnabled() bool {
	return strings.TrimSpace(c.AnalyticsDB) != ""
}

// Validate rejects values the server cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.HTTPAddr) == "" && strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("config: PORT or SHOWCASE_HTTP_ADDR is required")
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: unknown GIN_MODE %q", c.GinMode)
	}
	for name, d := range map[string]time.Duration{
		"SHOWCASE_CONTACT_SUBMIT_DELAY":  c.ContactSubmit,
		"SHOWCASE_CONTACT_SUCCESS_DELAY": c.ContactSuccess,
		"SHOWCASE_HERO_DELAY":            c.HeroGateDelay,
		"SHOWCASE_PROJECT_DELAY":         c.ProjectGateDelay,
		"SHOWCASE_MENTORSHIP_DELAY":      c.MentorshipGateDelay,
	} {
		if d < 0 {
			return fmt.Errorf("config: %s must not be negative", name)
		}
	}
	if c.AnalyticsEnabled() && c.VisitorRetention <= 0 {
		return fmt.Errorf("config: SHOWCASE_VISITOR_RETENTION must be positive")
	}
	if endpoint := strings.TrimSpace(c.OTelEndpoint); endpoint != "" {
		u, err := url.Parse(endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config: SHOWCASE_OTEL_ENDPOINT must be an http(s) URL, got %q", endpoint)
		}
	}
	return nil
}

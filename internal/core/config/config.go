// Package config handles configuration loading and validation for frogshop.
package config

import (
	"path/filepath"
	"time"

	"github.com/whimsicalfrog/frogshop/internal/core/modal"
	"github.com/whimsicalfrog/frogshop/internal/core/notify"
	"github.com/whimsicalfrog/frogshop/internal/core/styles"
	"github.com/whimsicalfrog/frogshop/internal/core/upsell"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// FROGSHOP_API_URL or FROGSHOP_UPSELL__CACHE_TTL.
const EnvPrefix = "FROGSHOP_"

// Config holds the application configuration.
type Config struct {
	APIURL      string        `yaml:"api_url"`
	APITimeout  time.Duration `yaml:"api_timeout"`
	SearchLimit int           `yaml:"search_limit"`
	Theme       string        `yaml:"theme"`
	MetricsAddr string        `yaml:"metrics_addr"`
	Notify      NotifyConfig  `yaml:"notify"`
	Modal       ModalConfig   `yaml:"modal"`
	Upsell      upsell.Config `yaml:"upsell"`
	DataDir     string        `yaml:"-"` // set by caller, not from config file
}

// NotifyConfig holds toast timings.
type NotifyConfig struct {
	Duration      time.Duration `yaml:"duration"`
	EnterDuration time.Duration `yaml:"enter_duration"`
	ExitDuration  time.Duration `yaml:"exit_duration"`
	MaxVisible    int           `yaml:"max_visible"`
}

// ModalConfig holds modal timings.
type ModalConfig struct {
	CloseDuration time.Duration `yaml:"close_duration"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		APIURL:      "http://localhost:8080",
		APITimeout:  10 * time.Second,
		SearchLimit: 12,
		Theme:       styles.DefaultTheme,
		Notify: NotifyConfig{
			Duration:      notify.DefaultDuration,
			EnterDuration: notify.DefaultEnterDuration,
			ExitDuration:  notify.DefaultExitDuration,
			MaxVisible:    notify.DefaultMaxVisible,
		},
		Modal: ModalConfig{
			CloseDuration: modal.DefaultCloseDuration,
		},
		Upsell: upsell.DefaultConfig(),
	}
}

// applyDefaults fills every unset option from DefaultConfig.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.APIURL == "" {
		c.APIURL = d.APIURL
	}
	if c.APITimeout == 0 {
		c.APITimeout = d.APITimeout
	}
	if c.SearchLimit == 0 {
		c.SearchLimit = d.SearchLimit
	}
	if c.Theme == "" {
		c.Theme = d.Theme
	}

	if c.Notify.Duration == 0 {
		c.Notify.Duration = d.Notify.Duration
	}
	if c.Notify.EnterDuration == 0 {
		c.Notify.EnterDuration = d.Notify.EnterDuration
	}
	if c.Notify.ExitDuration == 0 {
		c.Notify.ExitDuration = d.Notify.ExitDuration
	}
	if c.Notify.MaxVisible == 0 {
		c.Notify.MaxVisible = d.Notify.MaxVisible
	}
	if c.Modal.CloseDuration == 0 {
		c.Modal.CloseDuration = d.Modal.CloseDuration
	}

	u, du := &c.Upsell, d.Upsell
	if u.MaxResults == 0 {
		u.MaxResults = du.MaxResults
	}
	if u.MaxKeywords == 0 {
		u.MaxKeywords = du.MaxKeywords
	}
	if u.CacheTTL == 0 {
		u.CacheTTL = du.CacheTTL
	}
	if u.AffinityLimit == 0 {
		u.AffinityLimit = du.AffinityLimit
	}
	if u.Hints == nil {
		u.Hints = du.Hints
	}
}

// NotifyManagerConfig converts the toast timings.
func (c *Config) NotifyManagerConfig() notify.Config {
	return notify.Config{
		DefaultDuration: c.Notify.Duration,
		EnterDuration:   c.Notify.EnterDuration,
		ExitDuration:    c.Notify.ExitDuration,
		MaxVisible:      c.Notify.MaxVisible,
	}
}

// LogFile returns the default log file used by the terminal UI.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "frogshop.log")
}

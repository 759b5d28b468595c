package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/whimsicalfrog/frogshop/internal/core/styles"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("api_url", c.APIURL, httpURL),
		criterio.Run("api_timeout", c.APITimeout, positiveDuration),
		criterio.Run("search_limit", c.SearchLimit, positive),
		criterio.Run("theme", c.Theme, knownTheme),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		c.validateNotify(),
		c.validateUpsell(),
	)
}

func (c *Config) validateNotify() error {
	var errs criterio.FieldErrorsBuilder
	if c.Notify.Duration < 0 {
		errs = errs.Append("notify.duration", errors.New("must not be negative"))
	}
	if c.Notify.EnterDuration < 0 {
		errs = errs.Append("notify.enter_duration", errors.New("must not be negative"))
	}
	if c.Notify.ExitDuration < 0 {
		errs = errs.Append("notify.exit_duration", errors.New("must not be negative"))
	}
	if c.Notify.MaxVisible < 1 {
		errs = errs.Append("notify.max_visible", errors.New("must be at least 1"))
	}
	if c.Modal.CloseDuration < 0 {
		errs = errs.Append("modal.close_duration", errors.New("must not be negative"))
	}
	return errs.ToError()
}

func (c *Config) validateUpsell() error {
	var errs criterio.FieldErrorsBuilder
	u := c.Upsell
	if u.MaxResults < 1 {
		errs = errs.Append("upsell.max_results", errors.New("must be at least 1"))
	}
	if u.MaxKeywords < 1 {
		errs = errs.Append("upsell.max_keywords", errors.New("must be at least 1"))
	}
	if u.CacheTTL < 0 {
		errs = errs.Append("upsell.cache_ttl", errors.New("must not be negative"))
	}
	if r := u.Weights.BudgetRatio; r < 0 || r > 1 {
		errs = errs.Append("upsell.weights.budget_ratio", fmt.Errorf("must be between 0 and 1, got %v", r))
	}
	for i, h := range u.Hints {
		field := fmt.Sprintf("upsell.hints[%d]", i)
		if h.Name == "" {
			errs = errs.Append(field+".name", errors.New("is required"))
		}
		if len(h.Keywords) == 0 {
			errs = errs.Append(field+".keywords", errors.New("at least one keyword is required"))
		}
		if err := h.Validate(); err != nil {
			errs = errs.Append(field+".patterns", err)
		}
	}
	return errs.ToError()
}

func httpURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("host is required")
	}
	return nil
}

func positiveDuration(d time.Duration) error {
	if d <= 0 {
		return errors.New("must be positive")
	}
	return nil
}

func positive(n int) error {
	if n < 1 {
		return errors.New("must be at least 1")
	}
	return nil
}

func knownTheme(name string) error {
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q, available: %v", name, styles.ThemeNames())
	}
	return nil
}

// isDirectoryOrNotExist accepts a missing path, since the data directory is
// created on first use.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return errors.New("cannot be empty")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

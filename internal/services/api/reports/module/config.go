package module

import (
	"fmt"
	"time"

	"pubreg/internal/core/reportq"
	"pubreg/internal/platform/config"
	"pubreg/internal/platform/i18n"
)

// Backends that can answer report queries
const (
	BackendPG = "pg"
	BackendCH = "ch"
)

// Config holds REPORTS_ settings
type Config struct {
	Backend          string
	View             string
	DefaultLocale    string
	StatementTimeout time.Duration
}

// ConfigFrom reads settings from c, which should already carry the REPORTS_ prefix
func ConfigFrom(c config.Conf) Config {
	return Config{
		Backend:          c.MayEnum("BACKEND", BackendPG, BackendPG, BackendCH),
		View:             c.MayString("VIEW", "report_views"),
		DefaultLocale:    c.MayString("DEFAULT_LOCALE", i18n.DefaultLocale),
		StatementTimeout: c.MayDuration("STATEMENT_TIMEOUT", 30*time.Second),
	}
}

func (c Config) validate() error {
	if !reportq.ValidView(c.View) {
		return fmt.Errorf("reports: invalid view name %q", c.View)
	}
	switch c.Backend {
	case BackendPG, BackendCH:
	default:
		return fmt.Errorf("reports: unknown backend %q", c.Backend)
	}
	return nil
}

// Package module wires reports into the API using modkit
package module

import (
	"fmt"
	"strings"

	"pubreg/internal/core/reportq"
	modkit "pubreg/internal/modkit"
	"pubreg/internal/modkit/httpkit"
	"pubreg/internal/platform/i18n"
	"pubreg/internal/services/api/reports/domain"
	reportshttp "pubreg/internal/services/api/reports/http"
	reportsrepo "pubreg/internal/services/api/reports/repo"
	reportssvc "pubreg/internal/services/api/reports/service"
)

// Module serves distinct count reports
type Module struct {
	modkit.Base
}

// New constructs the reports module from REPORTS_ settings and panics on a bad setup
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	m, err := NewWithConfig(deps, ConfigFrom(deps.Cfg.Prefix("REPORTS_")), opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// NewWithConfig constructs the reports module from an explicit config
func NewWithConfig(deps modkit.Deps, cfg Config, opts ...modkit.Option) (*Module, error) {
	cfg.Backend = strings.ToLower(cfg.Backend)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cat, err := i18n.Load(cfg.DefaultLocale)
	if err != nil {
		return nil, fmt.Errorf("reports: %w", err)
	}
	reg, err := reportq.NewRegistry(reportq.Columns, cat, cat.Locales(), cat.Default())
	if err != nil {
		return nil, fmt.Errorf("reports: %w", err)
	}

	var repo reportsrepo.Repo
	switch cfg.Backend {
	case BackendCH:
		if deps.CH == nil {
			return nil, fmt.Errorf("reports: backend %q needs clickhouse enabled", cfg.Backend)
		}
		repo = reportsrepo.NewCH(deps.CH, cfg.View)
	default:
		if deps.PG == nil {
			return nil, fmt.Errorf("reports: backend %q needs postgres", cfg.Backend)
		}
		repo = reportsrepo.ReadOnly(deps.PG, reportsrepo.NewPG(cfg.View), cfg.StatementTimeout)
	}

	svc := reportssvc.New(reg, repo,
		reportssvc.WithTranslator(cat),
		reportssvc.WithMetrics(deps.Metrics),
	)

	deps.Log.Info().
		Str("backend", cfg.Backend).
		Str("view", cfg.View).
		Strs("locales", cat.Locales()).
		Msg("reports: module ready")

	routes := func(r httpkit.Router) { reportshttp.Register(r, svc, cat.FromRequest) }
	return &Module{
		Base: modkit.NewBase("reports", "/reports", routes, domain.ServicePort(svc), opts...),
	}, nil
}

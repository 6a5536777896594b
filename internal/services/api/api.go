// Package api provides the HTTP API for the application
package api

import (
	"net/http"

	"pubreg/internal/platform/config"
	"pubreg/internal/platform/logger"
	"pubreg/internal/platform/metrics"
	phttp "pubreg/internal/platform/net/http"
	"pubreg/internal/platform/store"

	"pubreg/internal/modkit"
	"pubreg/internal/modkit/httpkit"
	"pubreg/internal/modkit/module"
	"pubreg/internal/modkit/swaggerkit"

	metamod "pubreg/internal/services/api/meta/module"
	reportsmod "pubreg/internal/services/api/reports/module"
	searchmod "pubreg/internal/services/api/search/module"
)

// Options are the API options
type Options struct {
	// Config is the root view, modules read their own prefixes from it
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	Metrics        *metrics.Metrics
	EnableSwagger  bool
	EnableProfiler bool
	EnableMetrics  bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg:     opt.Config,
		Metrics: opt.Metrics,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
		deps.CH = opt.Store.CH
	}

	reg := &module.Registry{}
	mods := []module.Module{
		metamod.New(deps, reg.Names),
		reportsmod.New(deps),
	}
	// the search index lives in postgres only
	if deps.PG != nil {
		mods = append(mods, searchmod.New(deps))
	}

	if opt.EnableMetrics {
		r.Handle("/metrics", opt.Metrics.Handler())
	}
	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	// versioned API with a common middleware stack, metrics outermost so every status is counted
	stack := append([]func(http.Handler) http.Handler{opt.Metrics.Middleware}, httpkit.CommonStack()...)
	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		for _, m := range mods {
			reg.Add(m)
			m.MountRoutes(api)
		}
	})
}

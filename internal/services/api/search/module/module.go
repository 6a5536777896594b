// Package module wires the search index into the API using modkit
package module

import (
	"context"
	"errors"
	"time"

	modkit "pubreg/internal/modkit"
	"pubreg/internal/modkit/httpkit"
	"pubreg/internal/services/api/search/domain"
	searchhttp "pubreg/internal/services/api/search/http"
	searchrepo "pubreg/internal/services/api/search/repo"
	searchsvc "pubreg/internal/services/api/search/service"
)

// Module serves the search index
type Module struct {
	modkit.Base
}

// New constructs the search module from SEARCH_ settings and panics on a bad setup
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	m, err := NewWithConfig(deps, ConfigFrom(deps.Cfg.Prefix("SEARCH_")), opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// NewWithConfig constructs the search module from an explicit config
func NewWithConfig(deps modkit.Deps, cfg Config, opts ...modkit.Option) (*Module, error) {
	if deps.PG == nil {
		return nil, errors.New("search: needs postgres")
	}
	svc := searchsvc.New(deps.PG, searchrepo.NewPG(cfg.Table), deps.Metrics)
	if cfg.EnsureSchema {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := svc.EnsureSchema(ctx); err != nil {
			return nil, err
		}
	}

	routes := func(r httpkit.Router) { searchhttp.Register(r, svc) }
	return &Module{
		Base: modkit.NewBase("search", "/search", routes, domain.Index(svc), opts...),
	}, nil
}

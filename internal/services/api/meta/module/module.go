// Package module mounts the meta endpoints
package module

import (
	"time"

	modkit "pubreg/internal/modkit"
	"pubreg/internal/modkit/httpkit"
	metahttp "pubreg/internal/services/api/meta/http"
)

// ServiceName is reported by the health and version endpoints
const ServiceName = "pubreg-api"

// Module serves /meta
type Module struct {
	modkit.Base
}

// New builds the meta module. modules lists what the api mounted and may be nil
func New(deps modkit.Deps, modules func() []string, opts ...modkit.Option) *Module {
	d := metahttp.Deps{
		ServiceName: ServiceName,
		StartedAt:   time.Now(),
		Modules:     modules,
	}
	// typed nils would look configured
	d.Checks = []metahttp.Check{{Name: "pg"}, {Name: "ch"}}
	if deps.PG != nil {
		d.Checks[0].Target = deps.PG
	}
	if deps.CH != nil {
		d.Checks[1].Target = deps.CH
	}
	d.ReadyTimeout = deps.Cfg.MayDuration("META_READY_TIMEOUT", 2*time.Second)

	routes := func(r httpkit.Router) { metahttp.Register(r, d) }
	return &Module{Base: modkit.NewBase("meta", "/meta", routes, nil, opts...)}
}

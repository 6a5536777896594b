package modkit

import (
	"net/http"

	phttp "pubreg/internal/platform/net/http"
	str "pubreg/internal/platform/strings"
)

// Option overrides a module's defaults
type Option func(*Base)

// WithName renames the module
func WithName(name string) Option { return func(b *Base) { b.name = name } }

// WithPrefix mounts the module under prefix instead of its default
func WithPrefix(prefix string) Option { return func(b *Base) { b.prefix = prefix } }

// WithMiddlewares runs mw, in order, in front of the module's routes only
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Base) { b.mw = append(b.mw, mw...) }
}

// WithRegister mounts extra routes next to the module's own
func WithRegister(fn func(phttp.Router)) Option {
	return func(b *Base) { b.extra = append(b.extra, fn) }
}

// Base implements Module for a set of routes under one prefix.
// Modules embed it and add their own fields
type Base struct {
	name   string
	prefix string
	mw     []func(http.Handler) http.Handler
	routes func(phttp.Router)
	extra  []func(phttp.Router)
	ports  any
}

// NewBase builds the routing half of a module. ports is what Ports returns
func NewBase(name, prefix string, routes func(phttp.Router), ports any, opts ...Option) Base {
	b := Base{name: name, prefix: prefix, routes: routes, ports: ports}
	for _, o := range opts {
		o(&b)
	}
	b.name = str.MustString(b.name, "module name")
	b.prefix = str.MustPrefix(b.prefix)
	return b
}

func (b Base) Name() string   { return b.name }
func (b Base) Prefix() string { return b.prefix }
func (b Base) Ports() any     { return b.ports }

// MountRoutes mounts the module under its prefix
func (b Base) MountRoutes(r phttp.Router) {
	r.Route(b.prefix, func(sub phttp.Router) {
		sub.Use(b.mw...)
		if b.routes != nil {
			b.routes(sub)
		}
		for _, fn := range b.extra {
			fn(sub)
		}
	})
}

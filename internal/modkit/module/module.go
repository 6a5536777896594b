// Package module is the contract the api mounts, kept apart from modkit
// so module packages can name it without importing their deps
package module

import (
	"reflect"
	"slices"
	"sync"

	phttp "pubreg/internal/platform/net/http"
)

// Module mounts routes and exposes a port set other modules may use
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}

// PortsOf returns the first value in m's ports that implements T: the
// ports value itself or one of its exported struct fields
func PortsOf[T any](m Module) (T, bool) {
	var zero T
	p := m.Ports()
	if p == nil {
		return zero, false
	}
	if v, ok := p.(T); ok {
		return v, true
	}
	rv := reflect.ValueOf(p)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return zero, false
	}
	for i := range rv.NumField() {
		if f := rv.Field(i); f.CanInterface() {
			if v, ok := f.Interface().(T); ok {
				return v, true
			}
		}
	}
	return zero, false
}

// Registry records the modules mounted in one process
type Registry struct {
	mu   sync.RWMutex
	mods map[string]Module
}

// Add registers m under its name, replacing an earlier module of that name
func (r *Registry) Add(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mods == nil {
		r.mods = map[string]Module{}
	}
	r.mods[m.Name()] = m
}

// Names lists registered modules, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.mods))
	for n := range r.mods {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Lookup returns the port of type T exposed by the module called name
func Lookup[T any](r *Registry, name string) (T, bool) {
	r.mu.RLock()
	m, ok := r.mods[name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	return PortsOf[T](m)
}

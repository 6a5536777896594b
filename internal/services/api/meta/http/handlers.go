// Package http serves the meta endpoints: liveness, readiness and build info
package http

import (
	"context"
	"net/http"
	"time"

	"pubreg/internal/core/version"
	"pubreg/internal/modkit/httpkit"
)

// Check is a backend /ready pings. A nil Target is not configured and is
// reported as skipped
type Check struct {
	Name   string
	Target any
}

// Deps are what the meta handlers report on
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Checks      []Check
	// Modules lists the mounted api modules
	Modules func() []string
	// ReadyTimeout bounds all pings of one /ready call, 2s when zero
	ReadyTimeout time.Duration
}

type pinger interface {
	Ping(context.Context) error
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.ReadyTimeout <= 0 {
		d.ReadyTimeout = 2 * time.Second
	}
	h := handlers{d}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

type handlers struct{ d Deps }

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"pubreg-api"`
	Now     string `json:"now"     example:"2026-03-02T08:00:00Z"`
}

// CheckResult is one backend's readiness
type CheckResult struct {
	Name   string `json:"name"            example:"pg"`
	Status string `json:"status"          example:"ok"` // ok fail skipped unknown
	Error  string `json:"error,omitempty" example:"connection refused"`
	Millis int64  `json:"ms"              example:"3"`
}

// ReadyResponse folds the checks into ok, degraded or fail
type ReadyResponse struct {
	Status string        `json:"status" example:"ok"`
	Checks []CheckResult `json:"checks"`
}

// ServiceResponse describes the running process
type ServiceResponse struct {
	Name    string   `json:"name"    example:"pubreg-api"`
	Started string   `json:"started" example:"2026-03-02T07:55:00Z"`
	Uptime  int64    `json:"uptime"  example:"300"`
	Modules []string `json:"modules"`
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// @Summary Liveness
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /meta/health [get]
func (h handlers) health(*http.Request) (any, error) {
	return HealthResponse{OK: true, Service: h.d.ServiceName, Now: stamp(time.Now())}, nil
}

// @Summary Readiness with backend pings
// @Description a backend that is not configured is skipped and does not degrade the status
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse
// @Router /meta/ready [get]
func (h handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.d.ReadyTimeout)
	defer cancel()

	out := ReadyResponse{Status: "ok", Checks: make([]CheckResult, 0, len(h.d.Checks))}
	for _, c := range h.d.Checks {
		res := ping(ctx, c)
		switch res.Status {
		case "fail":
			out.Status = "fail"
		case "unknown":
			if out.Status == "ok" {
				out.Status = "degraded"
			}
		}
		out.Checks = append(out.Checks, res)
	}
	return out, nil
}

func ping(ctx context.Context, c Check) CheckResult {
	res := CheckResult{Name: c.Name}
	if c.Target == nil {
		res.Status = "skipped"
		return res
	}
	p, ok := c.Target.(pinger)
	if !ok {
		res.Status = "unknown"
		return res
	}
	start := time.Now()
	err := p.Ping(ctx)
	res.Millis = time.Since(start).Milliseconds()
	if err != nil {
		res.Status, res.Error = "fail", err.Error()
		return res
	}
	res.Status = "ok"
	return res
}

// @Summary Build info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo
// @Router /meta/version [get]
func (h handlers) version(*http.Request) (any, error) {
	return version.Info(h.d.ServiceName), nil
}

// @Summary Uptime and mounted modules
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse
// @Router /meta/service [get]
func (h handlers) service(*http.Request) (any, error) {
	out := ServiceResponse{
		Name:    h.d.ServiceName,
		Started: stamp(h.d.StartedAt),
		Uptime:  int64(time.Since(h.d.StartedAt) / time.Second),
		Modules: []string{},
	}
	if h.d.Modules != nil {
		out.Modules = h.d.Modules()
	}
	return out, nil
}

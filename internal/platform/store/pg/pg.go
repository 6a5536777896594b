// Package pg opens the pgx pool behind the report and search repos
package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config configures the pool
type Config struct {
	URL      string
	MaxConns int32
	// AppName shows up as application_name in pg_stat_activity
	AppName string
	// SlowQuery marks statements at or above it as slow, zero disables
	SlowQuery time.Duration
}

// PG owns the pool
type PG struct {
	Pool *pgxpool.Pool
}

var newPool = pgxpool.NewWithConfig

// PoolConfig parses cfg.URL and applies the overrides
// obs may be nil, in which case statements are not traced
func PoolConfig(cfg Config, obs Observer) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.AppName != "" {
		pc.ConnConfig.RuntimeParams["application_name"] = cfg.AppName
	}
	if obs != nil {
		pc.ConnConfig.Tracer = &tracer{obs: obs, slow: cfg.SlowQuery}
	}
	return pc, nil
}

// Open builds the pool, connections are dialed lazily
func Open(ctx context.Context, cfg Config, obs Observer) (*PG, error) {
	pc, err := PoolConfig(cfg, obs)
	if err != nil {
		return nil, err
	}
	pool, err := newPool(ctx, pc)
	if err != nil {
		return nil, err
	}
	return &PG{Pool: pool}, nil
}

// Ping checks a pooled connection answers
func (p *PG) Ping(ctx context.Context) error {
	return p.Pool.Ping(ctx)
}

// Close closes the pool, safe on nil
func (p *PG) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}

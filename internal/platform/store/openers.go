package store

import (
	"context"
	"fmt"
	"time"

	"pubreg/internal/platform/store/ch"
	"pubreg/internal/platform/store/pg"
)

var retryDelay = func(attempt int) time.Duration {
	d := 150 * time.Millisecond << attempt
	if d <= 0 || d > 2*time.Second {
		return 2 * time.Second
	}
	return d
}

// openPG builds the pool and waits for the server to accept connections
func openPG(ctx context.Context, cfg Config, s *Store) (*pgStore, error) {
	slow := time.Duration(cfg.PG.SlowQueryMs) * time.Millisecond
	p, err := pg.Open(ctx, pg.Config{
		URL:       cfg.PG.URL,
		MaxConns:  cfg.PG.MaxConns,
		AppName:   cfg.AppName,
		SlowQuery: slow,
	}, pg.Chain(append([]pg.Observer{pg.LogObserver(s.Log, cfg.PG.LogSQL)}, s.observers...)...))
	if err != nil {
		return nil, err
	}

	attempts := cfg.PG.ConnectRetries
	if attempts <= 0 {
		attempts = 20
	}
	timeout := cfg.PG.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		lastErr = p.Ping(pctx)
		cancel()
		if lastErr == nil {
			return newPGStore(p), nil
		}
		s.Log.Debug().Err(lastErr).Int("attempt", i+1).Msg("postgres not ready")

		select {
		case <-ctx.Done():
			p.Close()
			return nil, ctx.Err()
		case <-time.After(retryDelay(i)):
		}
	}
	p.Close()
	return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, lastErr)
}

// openCH opens clickhouse and pings once, the driver pools and redials on its own
func openCH(ctx context.Context, cfg Config, s *Store) (Clickhouse, error) {
	c, err := ch.Open(ctx, ch.Config{
		URL:         cfg.CH.URL,
		ClientInfo:  ch.BuildClientInfo(cfg.CH.ClientName, cfg.CH.ClientTag),
		DialTimeout: cfg.CH.DialTimeout,
	})
	if err != nil {
		return nil, err
	}

	timeout := cfg.CH.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := c.Ping(pctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("clickhouse ping failed: %w", err)
	}
	s.Log.Debug().Str("client", cfg.CH.ClientTag).Msg("clickhouse connected")
	return chStore{c}, nil
}

package store

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pubreg/internal/platform/config"
	"pubreg/internal/platform/store/ch"
	"pubreg/internal/platform/store/pg"
	"pubreg/internal/platform/testkit"

	"github.com/rs/zerolog"
)

type pingPG struct {
	stubQ
	err    error
	closed bool
}

func (p *pingPG) Tx(_ context.Context, fn func(RowQuerier) error) error { return fn(p) }
func (p *pingPG) Ping(context.Context) error                              { return p.err }
func (p *pingPG) Close() error                                            { p.closed = true; return nil }

type pingCH struct{ err error }

func (c *pingCH) Query(context.Context, string, ...any) (Rows, error) { return nil, nil }
func (c *pingCH) Close() error                                         { return nil }
func (c *pingCH) Ping(context.Context) error                           { return c.err }

func TestGuard(t *testing.T) {
	ctx := context.Background()
	if err := (*Store)(nil).Guard(ctx); err == nil {
		t.Fatalf("nil store should fail")
	}
	if err := (&Store{}).Guard(ctx); err != nil {
		t.Fatalf("empty store: %v", err)
	}

	pgDown := errors.New("pg down")
	chDown := errors.New("ch down")
	err := (&Store{PG: &pingPG{err: pgDown}, CH: &pingCH{err: chDown}}).Guard(ctx)
	if !errors.Is(err, pgDown) || !errors.Is(err, chDown) {
		t.Fatalf("both failures should be joined: %v", err)
	}
	if !strings.Contains(err.Error(), "pg: pg down") {
		t.Fatalf("backend prefix missing: %v", err)
	}
}

func TestClose(t *testing.T) {
	p := &pingPG{}
	if err := (&Store{PG: p, CH: &pingCH{}}).Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !p.closed {
		t.Fatalf("pg not closed")
	}
}

func TestOpen_Failures(t *testing.T) {
	testkit.Serial(t)
	testkit.Swap(t, &retryDelay, func(int) time.Duration { return time.Millisecond })
	ctx := context.Background()

	cases := map[string]Config{
		"bad pg url": {PG: PGConfig{Enabled: true, URL: "://bad"}},
		"pg refused": {PG: PGConfig{Enabled: true, URL: "postgres://u:p@127.0.0.1:1/db?sslmode=disable", ConnectRetries: 2, PingTimeout: 100 * time.Millisecond}},
		"empty ch":   {CH: CHConfig{Enabled: true}},
		"ch refused": {CH: CHConfig{Enabled: true, URL: "clickhouse://127.0.0.1:1/default", DialTimeout: 100 * time.Millisecond, PingTimeout: time.Second}},
	}
	for name, cfg := range cases {
		s, err := Open(ctx, cfg)
		if err == nil || s != nil {
			t.Fatalf("%s: store=%v err=%v", name, s, err)
		}
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err := Open(canceled, Config{PG: PGConfig{Enabled: true, URL: "postgres://u:p@127.0.0.1:1/db?sslmode=disable", ConnectRetries: 50}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("canceled open: %v", err)
	}
}

func TestOpen_Options(t *testing.T) {
	var buf bytes.Buffer
	obs := pg.ObserverFunc(func(context.Context, pg.Event) {})
	s, err := Open(context.Background(), Config{}, WithLogger(zerolog.New(&buf)), WithQueryObserver(obs))
	if err != nil {
		t.Fatal(err)
	}
	if s.PG != nil || s.CH != nil || len(s.observers) != 1 {
		t.Fatalf("store = %+v", s)
	}
	s.Log.Info().Msg("ready")
	if buf.Len() == 0 {
		t.Fatalf("logger not applied")
	}
}

func TestConfigFrom(t *testing.T) {
	t.Setenv("T_PG_DBURL", "postgres://h/registry")
	t.Setenv("T_PG_SLOW_MS", "250")
	p := PGFrom(config.New().Prefix("T_PG_"), 4)
	if !p.Enabled || p.URL != "postgres://h/registry" || p.MaxConns != 4 || p.SlowQueryMs != 250 || p.PingTimeout != 3*time.Second {
		t.Fatalf("pg = %+v", p)
	}

	if c := CHFrom(config.New().Prefix("T_CH_"), "api"); c.Enabled {
		t.Fatalf("clickhouse should default off: %+v", c)
	}
	t.Setenv("T_CH_ENABLED", "true")
	t.Setenv("T_CH_DBURL", "clickhouse://h:9000/registry")
	c := CHFrom(config.New().Prefix("T_CH_"), "indexer")
	if !c.Enabled || c.ClientTag != "indexer" || c.PingTimeout != 5*time.Second {
		t.Fatalf("ch = %+v", c)
	}
}

func TestCHStore_Unconnected(t *testing.T) {
	var c Clickhouse = chStore{&ch.CH{}}
	if _, err := c.Query(context.Background(), "SELECT 1"); err == nil {
		t.Fatalf("query without a connection")
	}
	if err := c.(Pinger).Ping(context.Background()); err == nil {
		t.Fatalf("ping without a connection")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

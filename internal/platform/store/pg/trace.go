package pg

import (
	"context"
	"strings"
	"time"

	"pubreg/internal/platform/logger"

	"github.com/jackc/pgx/v5"
)

// Event describes one finished statement
type Event struct {
	SQL     string
	Args    []any
	Rows    int64
	Elapsed time.Duration
	Err     error
	Slow    bool
}

// Observer receives an Event after every statement
type Observer interface {
	Observe(ctx context.Context, ev Event)
}

// ObserverFunc adapts a plain func to Observer
type ObserverFunc func(ctx context.Context, ev Event)

// Observe calls f
func (f ObserverFunc) Observe(ctx context.Context, ev Event) { f(ctx, ev) }

// Chain fans events out to every non nil observer, nil when none remain
func Chain(obs ...Observer) Observer {
	var keep multi
	for _, o := range obs {
		if o != nil {
			keep = append(keep, o)
		}
	}
	switch len(keep) {
	case 0:
		return nil
	case 1:
		return keep[0]
	}
	return keep
}

type multi []Observer

func (m multi) Observe(ctx context.Context, ev Event) {
	for _, o := range m {
		o.Observe(ctx, ev)
	}
}

// LogObserver logs statements through zerolog
// with all unset only slow or failed statements are written
func LogObserver(l logger.Logger, all bool) Observer {
	l = l.With().Str("component", "pg").Logger()
	return ObserverFunc(func(_ context.Context, ev Event) {
		if !all && !ev.Slow && ev.Err == nil {
			return
		}
		e := l.Debug()
		switch {
		case ev.Err != nil:
			e = l.Error().Err(ev.Err)
		case ev.Slow:
			e = l.Warn()
		}
		e.Dur("elapsed", ev.Elapsed).
			Bool("slow", ev.Slow).
			Int64("rows", ev.Rows).
			Str("sql", Squash(ev.SQL)).
			Msg("pg query")
	})
}

// Squash collapses whitespace runs so multi line SQL logs on one line
func Squash(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}

type startKey struct{}

type started struct {
	at   time.Time
	sql  string
	args []any
}

// tracer plugs an Observer into pgx
type tracer struct {
	obs  Observer
	slow time.Duration
}

var _ pgx.QueryTracer = (*tracer)(nil)

func (t *tracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, d pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, startKey{}, started{at: time.Now(), sql: d.SQL, args: d.Args})
}

func (t *tracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, d pgx.TraceQueryEndData) {
	s, ok := ctx.Value(startKey{}).(started)
	if !ok {
		return
	}
	elapsed := time.Since(s.at)
	t.obs.Observe(ctx, Event{
		SQL:     s.sql,
		Args:    s.args,
		Rows:    d.CommandTag.RowsAffected(),
		Elapsed: elapsed,
		Err:     d.Err,
		Slow:    t.slow > 0 && elapsed >= t.slow,
	})
}

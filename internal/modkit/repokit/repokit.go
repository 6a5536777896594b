// Package repokit is the seam between services and the sql store: the
// query surface repos bind to and the transaction helpers around it
package repokit

import (
	"context"
	"fmt"
	"time"

	"pubreg/internal/platform/store"
)

type (
	// Queryer is what a bound repo runs statements on, a pool or a tx
	Queryer = store.RowQuerier
	// TxRunner is a Queryer that can open transactions
	TxRunner = store.TxRunner
	// Clickhouse is the columnar store reports may read from
	Clickhouse = store.Clickhouse
)

// Binder makes a repo bound to q, so one repo type serves pool and tx
type Binder[T any] interface {
	Bind(q Queryer) T
}

// BindFunc adapts a func to Binder
type BindFunc[T any] func(Queryer) T

// Bind calls f
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// WithTx runs fn in a transaction on db
func WithTx(ctx context.Context, db TxRunner, fn func(q Queryer) error) error {
	return db.Tx(ctx, fn)
}

// BeginHook runs first inside every transaction, e.g. to SET LOCAL
type BeginHook func(ctx context.Context, q Queryer) error

// WithBeginHooks returns db with hooks run, in order, at the start of each
// Tx. A failing hook aborts the transaction. Statements outside Tx are untouched
func WithBeginHooks(db TxRunner, hooks ...BeginHook) TxRunner {
	return hooked{TxRunner: db, hooks: hooks}
}

type hooked struct {
	TxRunner
	hooks []BeginHook
}

func (h hooked) Tx(ctx context.Context, fn func(q Queryer) error) error {
	return h.TxRunner.Tx(ctx, func(q Queryer) error {
		for _, hook := range h.hooks {
			if err := hook(ctx, q); err != nil {
				return err
			}
		}
		return fn(q)
	})
}

// MustGuard panics unless st.Guard succeeds within 10s, or ctx's own deadline
func MustGuard(ctx context.Context, st interface{ Guard(context.Context) error }) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
	}
	if err := st.Guard(ctx); err != nil {
		panic(fmt.Errorf("dependency guard failed: %w", err))
	}
}

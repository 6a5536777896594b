// Package repo runs report plans against postgres or clickhouse
package repo

import (
	"context"
	"strconv"
	"time"

	"pubreg/internal/core/reportq"
	"pubreg/internal/modkit/repokit"
	perr "pubreg/internal/platform/errors"
	"pubreg/internal/platform/store"
)

// Repo executes a plan and returns rows of group cells followed by the count
type Repo interface {
	Run(ctx context.Context, p reportq.Plan) ([][]any, error)
}

type (
	// PG is a binder that can bind the repo to a Queryer or TxRunner
	PG struct {
		View string
	}
	// pgQueries implements Repo over a Queryer
	pgQueries struct {
		q    repokit.Queryer
		view string
	}
)

// NewPG returns a binder for the view
func NewPG(view string) repokit.Binder[Repo] {
	return PG{View: view}
}

// Bind wires a Queryer to the repo
func (b PG) Bind(q repokit.Queryer) Repo {
	return &pgQueries{q: q, view: b.View}
}

func (r *pgQueries) Run(ctx context.Context, p reportq.Plan) ([][]any, error) {
	sql, args, err := p.SQL(reportq.Postgres, r.view)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, perr.FromPostgres(err, "report query failed")
	}
	group := p.GroupBy()
	out, err := store.Collect(rows, func(row store.Row) ([]any, error) {
		dest := make([]any, 0, len(group)+1)
		for _, c := range group {
			if c.Kind.Textual() {
				dest = append(dest, new(*string))
			} else {
				dest = append(dest, new(*int64))
			}
		}
		n := new(int64)
		if err := row.Scan(append(dest, n)...); err != nil {
			return nil, err
		}
		cells := make([]any, 0, len(dest)+1)
		for _, d := range dest {
			switch v := d.(type) {
			case **string:
				cells = append(cells, derefCell(*v))
			case **int64:
				cells = append(cells, derefCell(*v))
			}
		}
		return append(cells, *n), nil
	})
	if err != nil {
		return nil, perr.FromPostgres(err, "report query failed")
	}
	return out, nil
}

func derefCell[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// txRepo runs every plan inside its own transaction
type txRepo struct {
	db     repokit.TxRunner
	binder repokit.Binder[Repo]
}

// ReadOnly runs each plan in a read only transaction bounded by timeout
func ReadOnly(db repokit.TxRunner, binder repokit.Binder[Repo], timeout time.Duration) Repo {
	if db == nil {
		panic("reports.repo requires a non nil TxRunner")
	}
	if binder == nil {
		panic("reports.repo requires a non nil Repo binder")
	}
	return txRepo{
		db:     repokit.WithBeginHooks(db, readOnlyHook(timeout)),
		binder: binder,
	}
}

func (t txRepo) Run(ctx context.Context, p reportq.Plan) ([][]any, error) {
	var out [][]any
	err := repokit.WithTx(ctx, t.db, func(q repokit.Queryer) error {
		rows, err := t.binder.Bind(q).Run(ctx, p)
		out = rows
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func readOnlyHook(timeout time.Duration) repokit.BeginHook {
	return func(ctx context.Context, q repokit.Queryer) error {
		if _, err := q.Exec(ctx, "SET TRANSACTION READ ONLY"); err != nil {
			return perr.FromPostgres(err, "report tx setup failed")
		}
		if timeout <= 0 {
			return nil
		}
		ms := strconv.FormatInt(timeout.Milliseconds(), 10)
		if _, err := q.Exec(ctx, "SELECT set_config('statement_timeout', $1, true)", ms); err != nil {
			return perr.FromPostgres(err, "report tx setup failed")
		}
		return nil
	}
}

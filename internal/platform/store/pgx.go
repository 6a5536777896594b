package store

import (
	"context"

	"pubreg/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxConn is the part of pgx shared by the pool and a transaction
type pgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgxQuerier narrows pgx results to RowQuerier
type pgxQuerier struct{ c pgxConn }

func (q pgxQuerier) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	ct, err := q.c.Exec(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return ct, nil
}

func (q pgxQuerier) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rs, err := q.c.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgxRows{rs}, nil
}

func (q pgxQuerier) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return q.c.QueryRow(ctx, sql, args...)
}

// pgxRows adds Columns to pgx.Rows
type pgxRows struct{ pgx.Rows }

func (r pgxRows) Columns() []string {
	fds := r.FieldDescriptions()
	names := make([]string, len(fds))
	for i, fd := range fds {
		names[i] = fd.Name
	}
	return names
}

// pgStore is the TxRunner over a pool
type pgStore struct {
	pgxQuerier
	pg *pg.PG
}

func newPGStore(p *pg.PG) *pgStore {
	return &pgStore{pgxQuerier: pgxQuerier{p.Pool}, pg: p}
}

// Tx runs fn in a transaction, rolled back when fn errors
func (s *pgStore) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	return pgx.BeginFunc(ctx, s.pg.Pool, func(tx pgx.Tx) error {
		return fn(pgxQuerier{tx})
	})
}

func (s *pgStore) Ping(ctx context.Context) error { return s.pg.Ping(ctx) }

func (s *pgStore) Close() error {
	s.pg.Close()
	return nil
}

package repo

import (
	"context"

	"pubreg/internal/core/reportq"
	"pubreg/internal/modkit/repokit"
	perr "pubreg/internal/platform/errors"
	"pubreg/internal/platform/store"
)

// chQueries implements Repo over a clickhouse copy of the report view
type chQueries struct {
	conn repokit.Clickhouse
	view string
}

// NewCH returns a Repo reading view from clickhouse
func NewCH(conn repokit.Clickhouse, view string) Repo {
	if conn == nil {
		panic("reports.repo requires a non nil Clickhouse")
	}
	return &chQueries{conn: conn, view: view}
}

func (r *chQueries) Run(ctx context.Context, p reportq.Plan) ([][]any, error) {
	sql, args, err := p.SQL(reportq.ClickHouse, r.view)
	if err != nil {
		return nil, err
	}
	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "report query failed")
	}
	group := p.GroupBy()
	out, err := store.Collect(rows, func(row store.Row) ([]any, error) {
		dest := make([]any, 0, len(group)+1)
		for _, c := range group {
			if c.Kind.Textual() {
				dest = append(dest, new(string))
			} else {
				dest = append(dest, new(int64))
			}
		}
		// count() is UInt64 in clickhouse
		n := new(uint64)
		if err := row.Scan(append(dest, n)...); err != nil {
			return nil, err
		}
		cells := make([]any, 0, len(dest)+1)
		for _, d := range dest {
			switch v := d.(type) {
			case *string:
				cells = append(cells, *v)
			case *int64:
				cells = append(cells, *v)
			}
		}
		return append(cells, int64(*n)), nil
	})
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "report query failed")
	}
	return out, nil
}

// Package repo stores the search index in a postgres table with a tsvector column
package repo

import (
	"context"
	"strings"

	"pubreg/internal/modkit/repokit"
	perr "pubreg/internal/platform/errors"
	"pubreg/internal/platform/store"
	"pubreg/internal/services/api/search/domain"

	"github.com/jackc/pgx/v5"
)

// Repo is the storage surface of the search index
type Repo interface {
	EnsureSchema(ctx context.Context) error
	Upsert(ctx context.Context, docs []domain.Document) (int, error)
	Delete(ctx context.Context, ids []int64) (int64, error)
	Commit(ctx context.Context) (int64, error)
	Clear(ctx context.Context) (int64, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Hit, error)
	SourcePage(ctx context.Context, view string, afterID int64, limit int) ([]domain.Document, error)
}

type (
	// PG is a binder that can bind the repo to a Queryer or TxRunner
	PG struct{ Table string }
	// queries implements Repo over a Queryer
	queries struct {
		q     repokit.Queryer
		table string
	}
)

// NewPG returns a binder for the index table
func NewPG(table string) repokit.Binder[Repo] { return PG{Table: table} }

// Bind wires a Queryer to the repo
func (b PG) Bind(q repokit.Queryer) Repo {
	return &queries{q: q, table: Ident(b.Table)}
}

// Ident quotes a possibly schema qualified name
func Ident(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

// the tsvector weights titles over authors and keywords over abstracts
const docVector = `setweight(to_tsvector('simple', coalesce($2, '')), 'A') ||
	setweight(to_tsvector('simple', array_to_string($4::text[], ' ')), 'B') ||
	setweight(to_tsvector('simple', array_to_string($7::text[], ' ')), 'B') ||
	setweight(to_tsvector('simple', coalesce($3, '')), 'C')`

func (r *queries) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + r.table + ` (
			id bigint PRIMARY KEY,
			title text NOT NULL DEFAULT '',
			abstract text NOT NULL DEFAULT '',
			authors text[] NOT NULL DEFAULT '{}',
			year integer,
			publication_type text NOT NULL DEFAULT '',
			keywords text[] NOT NULL DEFAULT '{}',
			doc tsvector NOT NULL,
			committed boolean NOT NULL DEFAULT false,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS ` + Ident(indexName(r.table)) + ` ON ` + r.table + ` USING gin (doc)`,
	}
	for _, s := range stmts {
		if _, err := r.q.Exec(ctx, s); err != nil {
			return perr.FromPostgres(err, "search schema failed")
		}
	}
	return nil
}

func indexName(quoted string) string {
	name := strings.ReplaceAll(quoted, `"`, "")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name + "_doc_idx"
}

func (r *queries) Upsert(ctx context.Context, docs []domain.Document) (int, error) {
	sql := `INSERT INTO ` + r.table + ` AS t
		(id, title, abstract, authors, year, publication_type, keywords, doc, committed, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, 0), $6, $7, ` + docVector + `, false, now())
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			abstract = EXCLUDED.abstract,
			authors = EXCLUDED.authors,
			year = EXCLUDED.year,
			publication_type = EXCLUDED.publication_type,
			keywords = EXCLUDED.keywords,
			doc = EXCLUDED.doc,
			committed = false,
			updated_at = now()`
	n := 0
	for _, d := range docs {
		_, err := r.q.Exec(ctx, sql,
			d.ID, d.Title, d.Abstract, nonNil(d.Authors), d.Year, d.PublicationType, nonNil(d.Keywords))
		if err != nil {
			return n, perr.FromPostgresf(err, "search upsert %d failed", d.ID)
		}
		n++
	}
	return n, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *queries) Delete(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := store.Affected(ctx, r.q, `DELETE FROM `+r.table+` WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, perr.FromPostgres(err, "search delete failed")
	}
	return n, nil
}

// Commit publishes pending rows then refreshes planner statistics
func (r *queries) Commit(ctx context.Context) (int64, error) {
	tag, err := r.q.Exec(ctx, `UPDATE `+r.table+` SET committed = true WHERE NOT committed`)
	if err != nil {
		return 0, perr.FromPostgres(err, "search commit failed")
	}
	if _, err := r.q.Exec(ctx, `ANALYZE `+r.table); err != nil {
		return 0, perr.FromPostgres(err, "search optimize failed")
	}
	return tag.RowsAffected(), nil
}

func (r *queries) Clear(ctx context.Context) (int64, error) {
	n, err := store.Affected(ctx, r.q, `DELETE FROM `+r.table)
	if err != nil {
		return 0, perr.FromPostgres(err, "search clear failed")
	}
	return n, nil
}

func (r *queries) Search(ctx context.Context, query string, limit int) ([]domain.Hit, error) {
	out, err := store.Many(ctx, r.q, func(row store.Row) (domain.Hit, error) {
		var h domain.Hit
		err := row.Scan(&h.ID, &h.Title, &h.Year, &h.Rank)
		return h, err
	}, `SELECT id, title, coalesce(year, 0), ts_rank(doc, q) AS rank
		FROM `+r.table+`, websearch_to_tsquery('simple', $1) AS q
		WHERE committed AND doc @@ q
		ORDER BY rank DESC, id
		LIMIT $2`, query, limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "search query failed")
	}
	return out, nil
}

// SourcePage reads one keyset page of documents from view ordered by id
func (r *queries) SourcePage(ctx context.Context, view string, afterID int64, limit int) ([]domain.Document, error) {
	out, err := store.Many(ctx, r.q, func(row store.Row) (domain.Document, error) {
		var d domain.Document
		err := row.Scan(&d.ID, &d.Title, &d.Abstract, &d.Authors, &d.Year, &d.PublicationType, &d.Keywords)
		return d, err
	}, `SELECT id, coalesce(title, ''), coalesce(abstract, ''),
			coalesce(authors, '{}'), coalesce(year, 0), coalesce(publication_type, ''), coalesce(keywords, '{}')
		FROM `+Ident(view)+`
		WHERE id > $1
		ORDER BY id
		LIMIT $2`, afterID, limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "search source failed")
	}
	return out, nil
}

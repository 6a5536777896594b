// Package service contains search index workflows
package service

import (
	"context"

	"pubreg/internal/modkit/repokit"
	"pubreg/internal/platform/logger"
	"pubreg/internal/platform/metrics"
	"pubreg/internal/services/api/search/domain"
	"pubreg/internal/services/api/search/repo"
)

// DefaultLimit caps searches that do not ask for a limit
const DefaultLimit = 20

// Service defines the search service contract
type Service interface {
	domain.Index
}

// Svc implements the search index over a postgres table
type Svc struct {
	db      repokit.TxRunner
	binder  repokit.Binder[repo.Repo]
	metrics *metrics.Metrics
}

// New constructs a search service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], m *metrics.Metrics) *Svc {
	if db == nil {
		panic("search.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("search.Service requires a non nil Repo binder")
	}
	return &Svc{db: db, binder: binder, metrics: m}
}

// EnsureSchema creates the index table when missing
func (s *Svc) EnsureSchema(ctx context.Context) error {
	return s.binder.Bind(s.db).EnsureSchema(ctx)
}

// Add stages documents for the next commit
// store failures are logged and swallowed so callers never fail because indexing did
func (s *Svc) Add(ctx context.Context, docs []domain.Document) domain.Ack {
	ack := domain.Ack{Op: "add"}
	if len(docs) == 0 {
		return ack
	}
	err := repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
		n, err := s.binder.Bind(q).Upsert(ctx, docs)
		ack.Documents = n
		return err
	})
	if err != nil {
		logger.C(ctx).Error().Err(err).Int("documents", len(docs)).Msg("search: add failed")
		s.metrics.SearchOp("add", metrics.OutcomeError, 0)
		ack.Documents = 0
		return ack
	}
	s.metrics.SearchOp("add", metrics.OutcomeOK, ack.Documents)
	return ack
}

// Delete removes documents by id
func (s *Svc) Delete(ctx context.Context, ids []int64) (domain.Ack, error) {
	n, err := s.binder.Bind(s.db).Delete(ctx, ids)
	return s.done(ctx, "delete", n, err)
}

// Commit publishes staged documents and refreshes statistics
func (s *Svc) Commit(ctx context.Context) (domain.Ack, error) {
	n, err := s.binder.Bind(s.db).Commit(ctx)
	return s.done(ctx, "commit", n, err)
}

// Clear drops every document
func (s *Svc) Clear(ctx context.Context) (domain.Ack, error) {
	n, err := s.binder.Bind(s.db).Clear(ctx)
	return s.done(ctx, "clear", n, err)
}

// Search ranks committed documents against a web style query
func (s *Svc) Search(ctx context.Context, in domain.SearchInput) ([]domain.Hit, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	hits, err := s.binder.Bind(s.db).Search(ctx, in.Query, limit)
	if err != nil {
		s.metrics.SearchOp("search", metrics.OutcomeError, 0)
		return nil, err
	}
	s.metrics.SearchOp("search", metrics.OutcomeOK, len(hits))
	return hits, nil
}

// SourcePage reads documents from a source view for reindexing
func (s *Svc) SourcePage(ctx context.Context, view string, afterID int64, limit int) ([]domain.Document, error) {
	return s.binder.Bind(s.db).SourcePage(ctx, view, afterID, limit)
}

func (s *Svc) done(ctx context.Context, op string, n int64, err error) (domain.Ack, error) {
	if err != nil {
		s.metrics.SearchOp(op, metrics.OutcomeError, 0)
		return domain.Ack{}, err
	}
	s.metrics.SearchOp(op, metrics.OutcomeOK, int(n))
	logger.C(ctx).Debug().Str("op", op).Int64("documents", n).Msg("search: done")
	return domain.Ack{Op: op, Documents: int(n)}, nil
}

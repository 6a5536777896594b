package service

import (
	"context"
	"errors"
	"testing"

	"pubreg/internal/modkit/repokit"
	perr "pubreg/internal/platform/errors"
	"pubreg/internal/platform/metrics"
	"pubreg/internal/platform/store"
	"pubreg/internal/services/api/search/domain"
	"pubreg/internal/services/api/search/repo"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDB struct{ txs int }

func (f *fakeDB) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (f *fakeDB) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (f *fakeDB) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (f *fakeDB) Tx(_ context.Context, fn func(store.RowQuerier) error) error {
	f.txs++
	return fn(f)
}

// memRepo is an in memory index with the same commit visibility as the table
type memRepo struct {
	docs      map[int64]domain.Document
	committed map[int64]bool
	err       error
	lastLimit int
}

func newMem() *memRepo {
	return &memRepo{docs: map[int64]domain.Document{}, committed: map[int64]bool{}}
}

func (m *memRepo) EnsureSchema(context.Context) error { return m.err }

func (m *memRepo) Upsert(_ context.Context, docs []domain.Document) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	for _, d := range docs {
		m.docs[d.ID] = d
		m.committed[d.ID] = false
	}
	return len(docs), nil
}

func (m *memRepo) Delete(_ context.Context, ids []int64) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for _, id := range ids {
		if _, ok := m.docs[id]; ok {
			delete(m.docs, id)
			delete(m.committed, id)
			n++
		}
	}
	return n, nil
}

func (m *memRepo) Commit(context.Context) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for id, c := range m.committed {
		if !c {
			m.committed[id] = true
			n++
		}
	}
	return n, nil
}

func (m *memRepo) Clear(context.Context) (int64, error) {
	n := int64(len(m.docs))
	m.docs = map[int64]domain.Document{}
	m.committed = map[int64]bool{}
	return n, m.err
}

func (m *memRepo) Search(_ context.Context, q string, limit int) ([]domain.Hit, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	out := []domain.Hit{}
	for id, d := range m.docs {
		if m.committed[id] && d.Title == q {
			out = append(out, domain.Hit{ID: id, Title: d.Title})
		}
	}
	return out, nil
}

func (m *memRepo) SourcePage(context.Context, string, int64, int) ([]domain.Document, error) {
	return nil, m.err
}

func newSvc(m *memRepo, mt *metrics.Metrics) (*Svc, *fakeDB) {
	db := &fakeDB{}
	b := repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return m })
	return New(db, b, mt), db
}

func TestNew_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { New(nil, repo.NewPG("t"), nil) })
	assert.Panics(t, func() { New(&fakeDB{}, nil, nil) })
}

func TestAddCommitSearch(t *testing.T) {
	m := newMem()
	mt := metrics.New(nil)
	s, db := newSvc(m, mt)
	ctx := context.Background()

	ack := s.Add(ctx, []domain.Document{{ID: 1, Title: "graphs"}, {ID: 2, Title: "graphs"}})
	assert.Equal(t, domain.Ack{Op: "add", Documents: 2}, ack)
	assert.Equal(t, 1, db.txs)

	hits, err := s.Search(ctx, domain.SearchInput{Query: "graphs"})
	require.NoError(t, err)
	assert.Empty(t, hits, "uncommitted documents are invisible")
	assert.Equal(t, DefaultLimit, m.lastLimit)

	ack, err = s.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ack.Documents)

	hits, err = s.Search(ctx, domain.SearchInput{Query: "graphs", Limit: 5})
	require.NoError(t, err)
	assert.Len(t, hits, 2)
	assert.Equal(t, 5, m.lastLimit)

	ack, err = s.Delete(ctx, []int64{1, 99})
	require.NoError(t, err)
	assert.Equal(t, domain.Ack{Op: "delete", Documents: 1}, ack)

	ack, err = s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Ack{Op: "clear", Documents: 1}, ack)

	assert.Equal(t, 2.0, testutil.ToFloat64(mt.SearchDocs.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mt.SearchOpsTotal.WithLabelValues("commit", metrics.OutcomeOK)))
}

func TestAdd_SwallowsStoreErrors(t *testing.T) {
	m := newMem()
	m.err = perr.New(perr.ErrorCodeDB, "down")
	mt := metrics.New(nil)
	s, _ := newSvc(m, mt)

	ack := s.Add(context.Background(), []domain.Document{{ID: 1}})
	assert.Equal(t, domain.Ack{Op: "add"}, ack)
	assert.Equal(t, 1.0, testutil.ToFloat64(mt.SearchOpsTotal.WithLabelValues("add", metrics.OutcomeError)))

	assert.Equal(t, domain.Ack{Op: "add"}, s.Add(context.Background(), nil))
}

func TestOtherOpsPropagateErrors(t *testing.T) {
	m := newMem()
	boom := errors.New("boom")
	m.err = boom
	s, _ := newSvc(m, nil)
	ctx := context.Background()

	_, err := s.Delete(ctx, []int64{1})
	assert.ErrorIs(t, err, boom)
	_, err = s.Commit(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = s.Clear(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = s.Search(ctx, domain.SearchInput{Query: "x"})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, s.EnsureSchema(ctx), boom)
}

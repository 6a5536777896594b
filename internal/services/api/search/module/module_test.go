package module

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	modkit "pubreg/internal/modkit"
	kitmod "pubreg/internal/modkit/module"
	"pubreg/internal/platform/config"
	phttp "pubreg/internal/platform/net/http"
	"pubreg/internal/platform/store"
	"pubreg/internal/services/api/search/domain"

	"github.com/go-chi/chi/v5"
)

type okTag struct{}

func (okTag) String() string      { return "OK" }
func (okTag) RowsAffected() int64 { return 0 }

type fakePG struct {
	sqls    []string
	execErr error
}

func (f *fakePG) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	f.sqls = append(f.sqls, sql)
	if f.execErr != nil {
		return nil, f.execErr
	}
	return okTag{}, nil
}
func (f *fakePG) Query(context.Context, string, ...any) (store.Rows, error) {
	return nil, errors.New("no rows")
}
func (f *fakePG) QueryRow(context.Context, string, ...any) store.Row { return nil }
func (f *fakePG) Tx(_ context.Context, fn func(store.RowQuerier) error) error {
	return fn(f)
}

func TestNewWithConfig(t *testing.T) {
	if _, err := NewWithConfig(modkit.Deps{}, Config{Table: "idx"}); err == nil {
		t.Fatalf("expected error without postgres")
	}

	pg := &fakePG{}
	m, err := NewWithConfig(modkit.Deps{PG: pg}, Config{Table: "idx", EnsureSchema: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(pg.sqls) != 2 || !strings.Contains(pg.sqls[0], `CREATE TABLE IF NOT EXISTS "idx"`) {
		t.Fatalf("schema sqls = %v", pg.sqls)
	}
	if m.Name() != "search" || m.Prefix() != "/search" {
		t.Fatalf("name/prefix = %q %q", m.Name(), m.Prefix())
	}
	if _, ok := kitmod.PortsOf[domain.Index](m); !ok {
		t.Fatalf("ports do not satisfy domain.Index")
	}

	_, err = NewWithConfig(modkit.Deps{PG: &fakePG{execErr: errors.New("denied")}}, Config{Table: "idx", EnsureSchema: true})
	if err == nil {
		t.Fatalf("expected schema error")
	}
}

func TestModule_Routes(t *testing.T) {
	m, err := NewWithConfig(modkit.Deps{PG: &fakePG{}}, Config{Table: "idx"})
	if err != nil {
		t.Fatal(err)
	}
	r := phttp.AdaptChi(chi.NewRouter())
	m.MountRoutes(r)

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/search/commit", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("commit status = %d body %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search/?q=x", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("search status = %d body %s", rec.Code, rec.Body.String())
	}
}

func TestConfigFrom_Defaults(t *testing.T) {
	t.Setenv("SEARCH_TABLE", "")
	t.Setenv("SEARCH_BATCH_SIZE", "50")
	c := ConfigFrom(config.New().Prefix("SEARCH_"))
	if c.Table != "publication_search_index" || c.BatchSize != 50 || c.EnsureSchema {
		t.Fatalf("config = %+v", c)
	}
}

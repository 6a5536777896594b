package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pubreg/internal/modkit/httpkit"
	perr "pubreg/internal/platform/errors"
	phttp "pubreg/internal/platform/net/http"
	"pubreg/internal/services/api/search/domain"

	"github.com/go-chi/chi/v5"
)

type fakeIndex struct {
	added   []domain.Document
	deleted []int64
	search  domain.SearchInput
	commits int
	clears  int
}

func (f *fakeIndex) Add(_ context.Context, docs []domain.Document) domain.Ack {
	f.added = append(f.added, docs...)
	return domain.Ack{Op: "add", Documents: len(docs)}
}

func (f *fakeIndex) Delete(_ context.Context, ids []int64) (domain.Ack, error) {
	f.deleted = append(f.deleted, ids...)
	return domain.Ack{Op: "delete", Documents: len(ids)}, nil
}

func (f *fakeIndex) Commit(context.Context) (domain.Ack, error) {
	f.commits++
	return domain.Ack{Op: "commit"}, nil
}

func (f *fakeIndex) Clear(context.Context) (domain.Ack, error) {
	f.clears++
	return domain.Ack{Op: "clear"}, nil
}

func (f *fakeIndex) Search(_ context.Context, in domain.SearchInput) ([]domain.Hit, error) {
	f.search = in
	return []domain.Hit{{ID: 1, Title: "t", Rank: 0.5}}, nil
}

func mount(idx *fakeIndex) stdhttp.Handler {
	r := phttp.AdaptChi(chi.NewRouter())
	r.Route("/search", func(sub httpkit.Router) { Register(sub, idx) })
	return r.Mux()
}

func call(t *testing.T, h stdhttp.Handler, method, path, body string) (int, phttp.Envelope) {
	t.Helper()
	var req *stdhttp.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return rec.Code, env
}

func TestSearchEndpoints(t *testing.T) {
	idx := &fakeIndex{}
	h := mount(idx)

	code, _ := call(t, h, stdhttp.MethodPost, "/search/documents", `{"documents":[{"id":1,"title":"a"},{"id":2}]}`)
	if code != stdhttp.StatusOK || len(idx.added) != 2 {
		t.Fatalf("add: %d %+v", code, idx.added)
	}

	code, _ = call(t, h, stdhttp.MethodDelete, "/search/documents", `{"ids":[2]}`)
	if code != stdhttp.StatusOK || len(idx.deleted) != 1 || idx.deleted[0] != 2 {
		t.Fatalf("delete: %d %+v", code, idx.deleted)
	}

	if code, _ = call(t, h, stdhttp.MethodPost, "/search/commit", ""); code != stdhttp.StatusOK || idx.commits != 1 {
		t.Fatalf("commit: %d", code)
	}
	if code, _ = call(t, h, stdhttp.MethodDelete, "/search/", ""); code != stdhttp.StatusOK || idx.clears != 1 {
		t.Fatalf("clear: %d", code)
	}

	code, env := call(t, h, stdhttp.MethodGet, "/search/?q=graph+theory&limit=5", "")
	if code != stdhttp.StatusOK {
		t.Fatalf("search: %d %+v", code, env)
	}
	if idx.search.Query != "graph theory" || idx.search.Limit != 5 {
		t.Fatalf("search input = %+v", idx.search)
	}
}

func TestSearchEndpoints_Validation(t *testing.T) {
	idx := &fakeIndex{}
	h := mount(idx)

	cases := []struct {
		method, path, body string
		status             int
		code               perr.ErrorCode
	}{
		{stdhttp.MethodGet, "/search/", "", stdhttp.StatusBadRequest, perr.ErrorCodeValidation},
		{stdhttp.MethodGet, "/search/?q=x&limit=many", "", stdhttp.StatusUnprocessableEntity, perr.ErrorCodeInvalidArgument},
		{stdhttp.MethodGet, "/search/?q=x&limit=1000", "", stdhttp.StatusBadRequest, perr.ErrorCodeValidation},
		{stdhttp.MethodPost, "/search/documents", `{"documents":[]}`, stdhttp.StatusBadRequest, perr.ErrorCodeValidation},
		{stdhttp.MethodPost, "/search/documents", `{"documents":[{"title":"no id"}]}`, stdhttp.StatusBadRequest, perr.ErrorCodeValidation},
		{stdhttp.MethodDelete, "/search/documents", `{"ids":[0]}`, stdhttp.StatusBadRequest, perr.ErrorCodeValidation},
	}
	for _, tc := range cases {
		code, env := call(t, h, tc.method, tc.path, tc.body)
		if code != tc.status || env.Code != tc.code {
			t.Fatalf("%s %s: status %d code %d, want %d %d (%s)", tc.method, tc.path, code, env.Code, tc.status, tc.code, env.Error)
		}
	}
	if len(idx.added) != 0 || len(idx.deleted) != 0 {
		t.Fatalf("invalid input reached the index")
	}
}

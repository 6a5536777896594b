package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pubreg/internal/platform/config"
	"pubreg/internal/platform/metrics"
	phttp "pubreg/internal/platform/net/http"
	"pubreg/internal/platform/store"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePG struct{}

func (fakePG) Exec(context.Context, string, ...any) (store.CommandTag, error) {
	return nil, errors.New("offline")
}
func (fakePG) Query(context.Context, string, ...any) (store.Rows, error) {
	return nil, errors.New("offline")
}
func (fakePG) QueryRow(context.Context, string, ...any) store.Row { return nil }
func (f fakePG) Tx(_ context.Context, fn func(store.RowQuerier) error) error {
	return fn(f)
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestMount(t *testing.T) {
	t.Setenv("REPORTS_BACKEND", "pg")
	t.Setenv("REPORTS_DEFAULT_LOCALE", "en")

	r := phttp.AdaptChi(chi.NewRouter())
	m := metrics.New(nil)
	Mount(r, Options{
		Config:        config.New(),
		Store:         &store.Store{PG: fakePG{}},
		Metrics:       m,
		EnableMetrics: true,
	})
	h := r.Mux()

	rec := serve(h, http.MethodGet, "/api/v1/meta/health")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "pubreg-api")

	rec = serve(h, http.MethodGet, "/api/v1/meta/service")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"modules":["meta","reports","search"]`)

	rec = serve(h, http.MethodGet, "/api/v1/reports/_columns")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "content_type")

	// store offline surfaces as a server error, not a 404
	rec = serve(h, http.MethodGet, "/api/v1/search?q=x")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = serve(h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "pubreg_http_requests_total"), body)
}

func TestMount_MissingReportsBackendPanics(t *testing.T) {
	t.Setenv("REPORTS_BACKEND", "ch")

	r := phttp.AdaptChi(chi.NewRouter())
	require.Panics(t, func() {
		Mount(r, Options{Config: config.New(), Store: &store.Store{}})
	}, "reports on clickhouse without a clickhouse store must fail fast")
}

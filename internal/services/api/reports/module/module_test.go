package module

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	modkit "pubreg/internal/modkit"
	"pubreg/internal/platform/config"
	phttp "pubreg/internal/platform/net/http"
	"pubreg/internal/platform/store"
	"pubreg/internal/services/api/reports/domain"

	"github.com/go-chi/chi/v5"
)

// fakePG fails any query, the tests below never reach the store
type fakePG struct{}

func (fakePG) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (fakePG) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (fakePG) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (fakePG) Tx(_ context.Context, fn func(store.RowQuerier) error) error    { return fn(fakePG{}) }

type fakeCH struct{}

func (fakeCH) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (fakeCH) Close() error                                              { return nil }

func okConfig() Config {
	return Config{Backend: BackendPG, View: "report_views", DefaultLocale: "sv", StatementTimeout: time.Second}
}

func TestNewWithConfig_Rejects(t *testing.T) {
	cases := []struct {
		name string
		deps modkit.Deps
		mut  func(*Config)
		want string
	}{
		{"bad view", modkit.Deps{PG: fakePG{}}, func(c *Config) { c.View = "v; drop" }, "invalid view"},
		{"unknown backend", modkit.Deps{PG: fakePG{}}, func(c *Config) { c.Backend = "mysql" }, "unknown backend"},
		{"pg missing", modkit.Deps{}, func(*Config) {}, "needs postgres"},
		{"ch missing", modkit.Deps{PG: fakePG{}}, func(c *Config) { c.Backend = "CH" }, "needs clickhouse"},
		{"unknown locale", modkit.Deps{PG: fakePG{}}, func(c *Config) { c.DefaultLocale = "de" }, "reports:"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := okConfig()
			tc.mut(&cfg)
			_, err := NewWithConfig(tc.deps, cfg)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestNew_PanicsOnBadSetup(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic without a store")
		}
	}()
	New(modkit.Deps{Cfg: config.New()})
}

func TestModule_MountsUnderPrefix(t *testing.T) {
	for _, backend := range []string{BackendPG, BackendCH} {
		cfg := okConfig()
		cfg.Backend = backend
		m, err := NewWithConfig(modkit.Deps{PG: fakePG{}, CH: fakeCH{}}, cfg)
		if err != nil {
			t.Fatalf("%s: %v", backend, err)
		}
		if m.Name() != "reports" || m.Prefix() != "/reports" {
			t.Fatalf("name/prefix = %q %q", m.Name(), m.Prefix())
		}
		if _, ok := m.Ports().(domain.ServicePort); !ok {
			t.Fatalf("ports do not satisfy domain.ServicePort")
		}

		r := phttp.AdaptChi(chi.NewRouter())
		m.MountRoutes(r)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/reports/_columns", nil)
		req.Header.Set("Accept-Language", "en-GB")
		r.Mux().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", backend, rec.Code)
		}
		var env struct {
			Data domain.ColumnsOutput `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatal(err)
		}
		if env.Data.Locale != "en" || env.Data.CountLabel != "Count" {
			t.Fatalf("%s: columns = %+v", backend, env.Data)
		}
	}
}

func TestModule_ExternalRegisterAndMiddleware(t *testing.T) {
	hits := 0
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			next.ServeHTTP(w, r)
		})
	}
	m, err := NewWithConfig(modkit.Deps{PG: fakePG{}}, okConfig(),
		modkit.WithPrefix("/r"),
		modkit.WithMiddlewares(mw),
		modkit.WithRegister(func(r phttp.Router) {
			r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	r := phttp.AdaptChi(chi.NewRouter())
	m.MountRoutes(r)

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/r/ping", nil))
	if rec.Code != http.StatusTeapot || hits != 1 {
		t.Fatalf("status = %d hits = %d", rec.Code, hits)
	}
}

func TestConfigFrom_Defaults(t *testing.T) {
	t.Setenv("REPORTS_BACKEND", "")
	t.Setenv("REPORTS_VIEW", "")
	t.Setenv("REPORTS_STATEMENT_TIMEOUT", "5s")
	c := ConfigFrom(config.New().Prefix("REPORTS_"))
	if c.Backend != BackendPG || c.View != "report_views" || c.DefaultLocale != "sv" || c.StatementTimeout != 5*time.Second {
		t.Fatalf("config = %+v", c)
	}
}

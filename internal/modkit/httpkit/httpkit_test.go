package httpkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "pubreg/internal/platform/errors"
	phttp "pubreg/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type idsInput struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
}

func mountV1(t *testing.T, register func(Router)) http.Handler {
	t.Helper()
	r := phttp.AdaptChi(chi.NewRouter())
	MountAPIV1(r, CommonStack(), func(api Router) {
		api.Route("/search", register)
	})
	return r.Mux()
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	var env Envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func TestRoutes(t *testing.T) {
	var removed []int64
	h := mountV1(t, func(r Router) {
		Get(r, "/{id}", func(req *http.Request) (any, error) { return Param(req, "id"), nil })
		Post(r, "/commit", func(*http.Request) (any, error) { return "committed", nil })
		Delete(r, "/", func(*http.Request) (any, error) { return "cleared", nil })
		DeleteJSON(r, "/documents", func(_ *http.Request, in idsInput) (any, error) {
			removed = in.IDs
			return len(in.IDs), nil
		})
		PostJSON(r, "/documents", func(_ *http.Request, in idsInput) (any, error) { return nil, nil })
		PostJSONWith(r, "/dry", JSONOptions{AllowEmptyBody: true}, func(_ *http.Request, in idsInput) (any, error) {
			return Attachment("ids.csv", "text/plain", []byte("n\n")), nil
		})
	})

	rec, env := do(t, h, http.MethodGet, "/api/v1/search/42", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", env.Data)

	_, env = do(t, h, http.MethodPost, "/api/v1/search/commit", "")
	assert.Equal(t, "committed", env.Data)

	rec, _ = do(t, h, http.MethodDelete, "/api/v1/search/documents", `{"ids":[3,4]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{3, 4}, removed)

	rec, env = do(t, h, http.MethodPost, "/api/v1/search/documents", `{"ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, perr.ErrorCodeValidation, env.Code)
	assert.Equal(t, "ids", env.Field)

	// empty body allowed, but validation still runs on the zero value
	rec, _ = do(t, h, http.MethodPost, "/api/v1/search/dry", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = do(t, h, http.MethodPost, "/api/v1/search/dry", `{"ids":[1]}`)
	assert.Equal(t, "n\n", rec.Body.String())

	rec, _ = do(t, h, http.MethodGet, "/api/v2/search/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(idsInput{IDs: []int64{1}}))
	assert.Equal(t, perr.ErrorCodeValidation, perr.CodeOf(Validate(idsInput{IDs: []int64{0}})))
}

func TestCommonStack(t *testing.T) {
	h := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	stack := CommonStack()
	for i := len(stack) - 1; i >= 0; i-- {
		h = stack[i](h)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/columns", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-cache")

	req := httptest.NewRequest(http.MethodOptions, "/reports/yearly", nil)
	req.Header.Set("Origin", "https://registry.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

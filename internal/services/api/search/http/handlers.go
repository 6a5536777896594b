// Package http provides http transport for the search index
package http

import (
	stdhttp "net/http"
	"strconv"

	"pubreg/internal/modkit/httpkit"
	perr "pubreg/internal/platform/errors"
	"pubreg/internal/services/api/search/domain"
	svc "pubreg/internal/services/api/search/service"
)

// Register mounts search endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.Get(r, "/", h.search)
	httpkit.Delete(r, "/", h.clear)

	// documents
	httpkit.PostJSON[domain.AddInput](r, "/documents", h.add)
	httpkit.DeleteJSON[domain.DeleteInput](r, "/documents", h.remove)

	httpkit.Post(r, "/commit", h.commit)
}

type handlers struct{ svc svc.Service }

// swagger:route GET /search Search searchDocuments
// @Summary Full text search over committed documents
// @Tags Search
// @Produce json
// @Param q query string true "Query in web search syntax"
// @Param limit query int false "Max hits (1-200)"
// @Success 200 {array} domain.Hit "ok"
// @Router /search [get]
func (h *handlers) search(r *stdhttp.Request) (any, error) {
	in := domain.SearchInput{Query: r.URL.Query().Get("q")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, perr.WithField(perr.InvalidArgf("limit must be an integer"), "limit")
		}
		in.Limit = n
	}
	if err := httpkit.Validate(in); err != nil {
		return nil, err
	}
	return h.svc.Search(r.Context(), in)
}

// swagger:route POST /search/documents Search addDocuments
// @Summary Stage documents for the next commit
// @Description store failures are logged and reported as zero documents
// @Tags Search
// @Accept json
// @Produce json
// @Param payload body domain.AddInput true "Documents"
// @Success 200 {object} domain.Ack "ok"
// @Router /search/documents [post]
func (h *handlers) add(r *stdhttp.Request, in domain.AddInput) (any, error) {
	return h.svc.Add(r.Context(), in.Documents), nil
}

// swagger:route DELETE /search/documents Search deleteDocuments
// @Summary Remove documents by id
// @Tags Search
// @Accept json
// @Produce json
// @Param payload body domain.DeleteInput true "Ids"
// @Success 200 {object} domain.Ack "ok"
// @Router /search/documents [delete]
func (h *handlers) remove(r *stdhttp.Request, in domain.DeleteInput) (any, error) {
	return h.svc.Delete(r.Context(), in.IDs)
}

// swagger:route POST /search/commit Search commitIndex
// @Summary Publish staged documents
// @Tags Search
// @Produce json
// @Success 200 {object} domain.Ack "ok"
// @Router /search/commit [post]
func (h *handlers) commit(r *stdhttp.Request) (any, error) {
	return h.svc.Commit(r.Context())
}

// swagger:route DELETE /search Search clearIndex
// @Summary Drop every document
// @Tags Search
// @Produce json
// @Success 200 {object} domain.Ack "ok"
// @Router /search [delete]
func (h *handlers) clear(r *stdhttp.Request) (any, error) {
	return h.svc.Clear(r.Context())
}

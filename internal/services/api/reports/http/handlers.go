// Package http provides http transport for reports
package http

import (
	"context"
	stdhttp "net/http"
	"strings"

	"pubreg/internal/core/reportq"
	"pubreg/internal/modkit/httpkit"
	perr "pubreg/internal/platform/errors"
	"pubreg/internal/platform/logger"
	"pubreg/internal/services/api/reports/domain"
	svc "pubreg/internal/services/api/reports/service"
)

// LocaleFunc picks the response locale for a request
type LocaleFunc func(*stdhttp.Request) string

// bodyOpts lets clients post without a body, which asks for the total count
var bodyOpts = httpkit.JSONOptions{AllowEmptyBody: true}

// Register mounts report endpoints on the given router
func Register(r httpkit.Router, s svc.Service, locale LocaleFunc) {
	if locale == nil {
		locale = func(*stdhttp.Request) string { return "" }
	}
	h := &handlers{svc: s, locale: locale}

	// structured report
	httpkit.PostJSONWith[domain.ReportInput](r, "/", bodyOpts, h.report)

	// registry listing, underscored so it never shadows a report name
	httpkit.Get(r, "/_columns", h.columns)

	// named downloads
	httpkit.Get(r, "/{name}", h.download)
	httpkit.PostJSONWith[domain.ExportInput](r, "/{name}/export", bodyOpts, h.export)
}

type handlers struct {
	svc    svc.Service
	locale LocaleFunc
}

// scope negotiates the locale and tags the request logger with it
func (h *handlers) scope(r *stdhttp.Request) (context.Context, string) {
	loc := h.locale(r)
	return logger.WithRequest(r.Context(), "", loc), loc
}

// swagger:route POST /reports Reports buildReport
// @Summary Build a distinct publication count report
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body domain.ReportInput false "Filters and group columns"
// @Param locale query string false "Label locale (sv, en)"
// @Success 200 {object} domain.ReportOutput "ok"
// @Failure 422 {object} httpkit.Envelope "invalid column or filter"
// @Router /reports [post]
func (h *handlers) report(r *stdhttp.Request, in domain.ReportInput) (any, error) {
	ctx, loc := h.scope(r)
	res, err := h.svc.BuildReport(ctx, in.Params(), loc)
	if err != nil {
		return nil, err
	}
	return domain.ReportOutput{Report: res}, nil
}

// swagger:route GET /reports/_columns Reports reportColumns
// @Summary List groupable columns and filter fields
// @Tags Reports
// @Produce json
// @Param locale query string false "Label locale (sv, en)"
// @Success 200 {object} domain.ColumnsOutput "ok"
// @Router /reports/_columns [get]
func (h *handlers) columns(r *stdhttp.Request) (any, error) {
	return h.svc.Columns(h.locale(r)), nil
}

// swagger:route GET /reports/{name} Reports downloadReport
// @Summary Download a report as a tab separated or xlsx file
// @Tags Reports
// @Produce text/csv
// @Param name path string true "Report name, used as the file name, must not start with _"
// @Param columns query []string false "Group columns, repeatable or comma separated"
// @Param format query string false "csv (default), xlsx or json"
// @Param start_year query int false "Inclusive lower year"
// @Param end_year query int false "Inclusive upper year"
// @Param publication_types query []int false "Publication type ids"
// @Param content_types query []string false "Content type tags"
// @Param faculties query []int false "Faculty ids"
// @Param departments query []int false "Department ids"
// @Param persons query []string false "Person accounts"
// @Success 200 {file} file "report file"
// @Failure 422 {object} httpkit.Envelope "invalid column or filter"
// @Router /reports/{name} [get]
func (h *handlers) download(r *stdhttp.Request) (any, error) {
	q := domain.DownloadQuery{
		Name:   httpkit.Param(r, "name"),
		Format: r.URL.Query().Get("format"),
		Report: ParseQuery(r),
	}
	if q.Format == "" {
		q.Format = string(reportq.FormatText)
	}
	if err := httpkit.Validate(q); err != nil {
		return nil, err
	}
	return h.file(r, q)
}

// swagger:route POST /reports/{name}/export Reports exportReport
// @Summary Export a report as a file
// @Tags Reports
// @Accept json
// @Produce text/csv
// @Param name path string true "Report name, used as the file name"
// @Param payload body domain.ExportInput false "Filters, group columns and format"
// @Success 200 {file} file "report file"
// @Failure 422 {object} httpkit.Envelope "invalid column or filter"
// @Router /reports/{name}/export [post]
func (h *handlers) export(r *stdhttp.Request, in domain.ExportInput) (any, error) {
	q := domain.DownloadQuery{
		Name:   httpkit.Param(r, "name"),
		Format: in.Format,
		Report: in.Params(),
	}
	if q.Format == "" {
		q.Format = string(reportq.FormatText)
	}
	if err := httpkit.Validate(q); err != nil {
		return nil, err
	}
	return h.file(r, q)
}

func (h *handlers) file(r *stdhttp.Request, q domain.DownloadQuery) (any, error) {
	f, err := reportq.ParseFormat(q.Format)
	if err != nil {
		return nil, perr.WithField(perr.Wrap(err, perr.ErrorCodeInvalidArgument, err.Error()), "format")
	}
	ctx, loc := h.scope(r)
	dl, err := h.svc.Export(ctx, q.Name, q.Report, f, loc)
	if err != nil {
		return nil, err
	}
	return httpkit.Attachment(dl.Filename, dl.ContentType, dl.Body), nil
}

// ParseQuery reads group columns and filters from the query string
// list values may repeat the key or be comma separated
func ParseQuery(r *stdhttp.Request) domain.ReportParams {
	vals := r.URL.Query()
	out := domain.ReportParams{Columns: splitList(vals["columns"])}

	for _, key := range reportq.FilterFields() {
		raw, ok := vals[key]
		if !ok {
			continue
		}
		if out.Filter == nil {
			out.Filter = map[string]any{}
		}
		items := splitList(raw)
		switch {
		case len(items) == 0:
			out.Filter[key] = ""
		case len(items) == 1:
			out.Filter[key] = items[0]
		default:
			list := make([]any, len(items))
			for i, v := range items {
				list[i] = v
			}
			out.Filter[key] = list
		}
	}
	return out
}

func splitList(raw []string) []string {
	var out []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

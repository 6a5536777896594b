// Package service contains report workflows
package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"pubreg/internal/core/reportq"
	perr "pubreg/internal/platform/errors"
	"pubreg/internal/platform/logger"
	"pubreg/internal/platform/metrics"
	"pubreg/internal/services/api/reports/domain"
	"pubreg/internal/services/api/reports/repo"

	"github.com/google/uuid"
)

// SheetKey is the catalog key for the worksheet name of xlsx exports
const SheetKey = "reports.export.sheet"

// Service defines the reports service contract
type Service interface {
	domain.ServicePort
}

// Translator resolves catalog keys for a locale
type Translator interface {
	Translate(locale, key string) (string, error)
}

// Svc implements the reports service
type Svc struct {
	reg     *reportq.Registry
	builder reportq.Builder
	tr      Translator
	metrics *metrics.Metrics
}

// Option tweaks Svc
type Option func(*Svc)

// WithMetrics records runs on m
func WithMetrics(m *metrics.Metrics) Option { return func(s *Svc) { s.metrics = m } }

// WithTranslator resolves export sheet names through tr
func WithTranslator(tr Translator) Option { return func(s *Svc) { s.tr = tr } }

// New constructs a reports service
func New(reg *reportq.Registry, r repo.Repo, opts ...Option) *Svc {
	if reg == nil {
		panic("reports.Service requires a non nil Registry")
	}
	if r == nil {
		panic("reports.Service requires a non nil Repo")
	}
	s := &Svc{reg: reg, builder: reportq.Builder{Registry: reg, Source: r}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// BuildReport runs the report and returns the localized structured result
func (s *Svc) BuildReport(ctx context.Context, in domain.ReportParams, locale string) (reportq.Result, error) {
	return s.run(ctx, in, locale, string(reportq.FormatStructured))
}

// BuildReportText runs the report and returns the tab separated document
func (s *Svc) BuildReportText(ctx context.Context, in domain.ReportParams, locale string) (string, error) {
	res, err := s.run(ctx, in, locale, string(reportq.FormatText))
	if err != nil {
		return "", err
	}
	return reportq.EncodeText(res), nil
}

// Export renders the report as a named file
func (s *Svc) Export(ctx context.Context, name string, in domain.ReportParams, format reportq.Format, locale string) (domain.Download, error) {
	if name == "" {
		name = "report"
	}
	res, err := s.run(ctx, in, locale, string(format))
	if err != nil {
		return domain.Download{}, err
	}

	var body []byte
	switch format {
	case reportq.FormatText:
		body = []byte(reportq.EncodeText(res))
	case reportq.FormatXLSX:
		body, err = reportq.EncodeXLSX(res, s.sheet(locale))
		if err != nil {
			return domain.Download{}, perr.Wrap(err, perr.ErrorCodeUnknown, "report export failed")
		}
	case reportq.FormatStructured:
		body, err = json.Marshal(domain.ReportOutput{Report: res})
		if err != nil {
			return domain.Download{}, perr.Wrap(err, perr.ErrorCodeJSON, "report export failed")
		}
	default:
		return domain.Download{}, perr.WithField(
			perr.Newf(perr.ErrorCodeInvalidArgument, "unsupported format %q", format), "format")
	}

	return domain.Download{
		Filename:    format.Filename(name),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

// Columns lists the groupable columns and filters with labels for locale
func (s *Svc) Columns(locale string) domain.ColumnsOutput {
	loc := s.reg.Locale(locale)
	labels := s.reg.Labels(loc)

	specs := s.reg.Columns()
	cols := make([]domain.ColumnInfo, 0, len(specs))
	for _, c := range specs {
		cols = append(cols, domain.ColumnInfo{Name: c.Name, Kind: c.Kind.String(), Label: labels[c.Name]})
	}
	return domain.ColumnsOutput{
		Locale:     loc,
		Columns:    cols,
		CountLabel: labels[reportq.CountColumn],
		Filters:    reportq.FilterFields(),
	}
}

func (s *Svc) run(ctx context.Context, in domain.ReportParams, locale, format string) (reportq.Result, error) {
	start := time.Now()
	grouped := len(in.Columns) > 0
	log := logger.C(ctx).With().
		Str("mod", "reports").
		Str("run_id", uuid.NewString()).
		Str("format", format).
		Strs("columns", in.Columns).
		Logger()

	res, err := s.builder.BuildReport(ctx, reportq.Request{
		Filters: reportq.FilterRequest(in.Filter),
		Columns: in.Columns,
	}, locale)
	if err != nil {
		mapped, outcome := mapError(err)
		s.metrics.ObserveReport(format, grouped, outcome, 0, time.Since(start))
		if outcome == metrics.OutcomeInvalid {
			log.Info().Err(err).Msg("reports: rejected")
		} else {
			log.Error().Err(err).Msg("reports: run failed")
		}
		return reportq.Result{}, mapped
	}

	s.metrics.ObserveReport(format, grouped, metrics.OutcomeOK, len(res.Data), time.Since(start))
	log.Debug().Int("rows", len(res.Data)).Dur("took", time.Since(start)).Msg("reports: run ok")
	return res, nil
}

func (s *Svc) sheet(locale string) string {
	if s.tr != nil {
		if v, err := s.tr.Translate(s.reg.Locale(locale), SheetKey); err == nil && v != "" {
			return v
		}
	}
	return "Report"
}

// mapError turns planner errors into invalid argument errors with a field
func mapError(err error) (error, string) {
	var ic *reportq.InvalidColumnError
	if errors.As(err, &ic) {
		return perr.WithField(perr.Wrap(err, perr.ErrorCodeInvalidArgument, ic.Error()), "columns"), metrics.OutcomeInvalid
	}
	var fe *reportq.InvalidFilterError
	if errors.As(err, &fe) {
		return perr.WithField(perr.Wrap(err, perr.ErrorCodeInvalidArgument, fe.Error()), "filter."+fe.Field), metrics.OutcomeInvalid
	}
	if _, ok := perr.As(err); ok {
		return err, metrics.OutcomeError
	}
	return perr.Wrap(err, perr.ErrorCodeUnknown, "report failed"), metrics.OutcomeError
}

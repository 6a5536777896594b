package domain

import (
	"context"

	"pubreg/internal/core/reportq"
)

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	BuildReport(ctx context.Context, in ReportParams, locale string) (reportq.Result, error)
	BuildReportText(ctx context.Context, in ReportParams, locale string) (string, error)
	Export(ctx context.Context, name string, in ReportParams, format reportq.Format, locale string) (Download, error)
	Columns(locale string) ColumnsOutput
}

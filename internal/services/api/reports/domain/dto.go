// Package domain holds DTOs for report http and service contracts
package domain

import "pubreg/internal/core/reportq"

// ReportParams is the report ask, filter keys outside the known set are ignored
type ReportParams struct {
	Filter  map[string]any `json:"filter,omitempty" swaggertype:"object" example:"start_year:2020"`
	Columns []string       `json:"columns,omitempty" validate:"omitempty,max=32,dive,required,max=64" example:"year,content_type"`
}

// ReportInput wraps the params the way clients post them
type ReportInput struct {
	Report *ReportParams `json:"report,omitempty"`
}

// Params returns the wrapped params, zero when absent
func (in ReportInput) Params() ReportParams {
	if in.Report == nil {
		return ReportParams{}
	}
	return *in.Report
}

// ExportInput asks for a report as a file
type ExportInput struct {
	Report *ReportParams `json:"report,omitempty"`
	Format string        `json:"format,omitempty" validate:"omitempty,oneof=csv txt text xlsx json" example:"csv"`
}

// Params returns the wrapped params, zero when absent
func (in ExportInput) Params() ReportParams {
	if in.Report == nil {
		return ReportParams{}
	}
	return *in.Report
}

// DownloadQuery is a named download built from path and query string
// names starting with an underscore are reserved for listings under /reports
type DownloadQuery struct {
	Name   string       `json:"name" validate:"required,max=200,startsnotwith=_"`
	Format string       `json:"format" validate:"omitempty,oneof=csv txt text xlsx json"`
	Report ReportParams `json:"report"`
}

// ReportOutput is the structured response body
type ReportOutput struct {
	Report reportq.Result `json:"report"`
}

// Download is a rendered report file
type Download struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ColumnInfo describes one groupable column
type ColumnInfo struct {
	Name  string `json:"name" example:"year"`
	Kind  string `json:"kind" example:"integer"`
	Label string `json:"label" example:"År"`
}

// ColumnsOutput lists what a client may group and filter by
type ColumnsOutput struct {
	Locale     string       `json:"locale" example:"sv"`
	Columns    []ColumnInfo `json:"columns"`
	CountLabel string       `json:"count_label" example:"Antal"`
	Filters    []string     `json:"filters" example:"start_year,end_year"`
}

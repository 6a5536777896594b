package reportq

import "context"

// Source executes a plan and returns raw rows, group cells then count
type Source interface {
	Run(ctx context.Context, p Plan) ([][]any, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context, p Plan) ([][]any, error)

// Run calls f
func (f SourceFunc) Run(ctx context.Context, p Plan) ([][]any, error) { return f(ctx, p) }

// Records is an in memory Source
type Records []ReportRecord

// Run evaluates p over the records
func (rs Records) Run(_ context.Context, p Plan) ([][]any, error) { return p.Evaluate(rs) }

// Builder plans, runs and shapes reports
type Builder struct {
	Registry *Registry
	Source   Source
}

// BuildReport returns the structured report
// the source is never called when planning fails
func (b Builder) BuildReport(ctx context.Context, req Request, locale string) (Result, error) {
	p, err := b.Registry.Plan(req)
	if err != nil {
		return Result{}, err
	}
	rows, err := b.Source.Run(ctx, p)
	if err != nil {
		return Result{}, err
	}
	return b.Registry.Shape(p, rows, locale)
}

// BuildReportText returns the tab separated report document
func (b Builder) BuildReportText(ctx context.Context, req Request, locale string) (string, error) {
	res, err := b.BuildReport(ctx, req, locale)
	if err != nil {
		return "", err
	}
	return EncodeText(res), nil
}

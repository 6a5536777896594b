package reportq

import "fmt"

// Result is the shaped report
// every row has len(Columns) cells and the last column is the count
type Result struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// Shape localizes the plan headers and checks rows against them
func (r *Registry) Shape(p Plan, rows [][]any, locale string) (Result, error) {
	names := p.OutputColumns()
	headers := make([]string, len(names))
	for i, n := range names {
		label, err := r.LabelFor(locale, n)
		if err != nil {
			return Result{}, err
		}
		headers[i] = label
	}

	if !p.Grouped() && len(rows) == 0 {
		rows = [][]any{{int64(0)}}
	}
	data := make([][]any, 0, len(rows))
	for i, row := range rows {
		if len(row) != len(headers) {
			return Result{}, fmt.Errorf("reportq: row %d has %d cells, want %d", i, len(row), len(headers))
		}
		data = append(data, row)
	}
	if !p.Grouped() && len(data) != 1 {
		return Result{}, fmt.Errorf("reportq: total report returned %d rows", len(data))
	}
	return Result{Columns: headers, Data: data}, nil
}

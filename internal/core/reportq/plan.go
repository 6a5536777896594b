package reportq

// Request is one report ask
type Request struct {
	Filters FilterRequest
	Columns []string
}

// Plan is a validated report query
// every output column other than count is a group column
type Plan struct {
	where   []Predicate
	groupBy []ColumnSpec
}

// Plan validates the group columns first and then compiles the filters
// an InvalidColumnError is returned before anything else is looked at
func (r *Registry) Plan(req Request) (Plan, error) {
	if bad := r.invalid(req.Columns); len(bad) > 0 {
		return Plan{}, &InvalidColumnError{Columns: bad}
	}
	where, err := r.CompileFilters(req.Filters)
	if err != nil {
		return Plan{}, err
	}
	p := Plan{where: where}
	for _, n := range req.Columns {
		p.groupBy = append(p.groupBy, r.byName[n])
	}
	return p, nil
}

// Grouped reports whether the plan has group columns
func (p Plan) Grouped() bool { return len(p.groupBy) > 0 }

// GroupBy returns the group columns in request order
func (p Plan) GroupBy() []ColumnSpec { return append([]ColumnSpec(nil), p.groupBy...) }

// Where returns the compiled predicates
func (p Plan) Where() []Predicate { return append([]Predicate(nil), p.where...) }

// Width is the number of cells in every result row
func (p Plan) Width() int { return len(p.groupBy) + 1 }

// OutputColumns names the result columns, count last
func (p Plan) OutputColumns() []string {
	out := make([]string, 0, p.Width())
	for _, c := range p.groupBy {
		out = append(out, c.Name)
	}
	return append(out, CountColumn)
}

package reportq

import (
	"fmt"
	"sort"
	"strings"
)

// ReportRecord is one row of the denormalized publication report view
type ReportRecord struct {
	PublicationID     int64  `json:"publication_id" yaml:"publication_id"`
	Year              int64  `json:"year" yaml:"year"`
	PublicationTypeID int64  `json:"publication_type_id" yaml:"publication_type_id"`
	ContentType       string `json:"content_type" yaml:"content_type"`
	FacultyID         int64  `json:"faculty_id" yaml:"faculty_id"`
	DepartmentID      int64  `json:"department_id" yaml:"department_id"`
	Xaccount          string `json:"xaccount" yaml:"xaccount"`
}

// Value returns the cell of a registered column
func (r ReportRecord) Value(column string) (any, bool) {
	switch column {
	case "year":
		return r.Year, true
	case "publication_type_id":
		return r.PublicationTypeID, true
	case "content_type":
		return r.ContentType, true
	case "faculty_id":
		return r.FacultyID, true
	case "department_id":
		return r.DepartmentID, true
	case "xaccount":
		return r.Xaccount, true
	case IdentityColumn:
		return r.PublicationID, true
	}
	return nil, false
}

// Match reports whether rec satisfies the predicate
func (p Predicate) Match(rec ReportRecord) bool {
	v, ok := rec.Value(p.Column.Name)
	if !ok {
		return false
	}
	switch p.Op {
	case OpGTE:
		n, ok := v.(int64)
		return ok && n >= p.Bound
	case OpLTE:
		n, ok := v.(int64)
		return ok && n <= p.Bound
	case OpIn:
		for _, s := range p.Set {
			if s == v {
				return true
			}
		}
	}
	return false
}

// Evaluate runs the plan over an in memory record set
// rows come back in the same shape and order a backend would return them
func (p Plan) Evaluate(records []ReportRecord) ([][]any, error) {
	matched := make([]ReportRecord, 0, len(records))
	for _, rec := range records {
		if p.matches(rec) {
			matched = append(matched, rec)
		}
	}

	if !p.Grouped() {
		distinct := make(map[int64]struct{}, len(matched))
		for _, rec := range matched {
			distinct[rec.PublicationID] = struct{}{}
		}
		return [][]any{{int64(len(distinct))}}, nil
	}

	type group struct {
		key []any
		ids map[int64]struct{}
	}
	groups := map[string]*group{}
	for _, rec := range matched {
		key := make([]any, len(p.groupBy))
		for i, c := range p.groupBy {
			v, ok := rec.Value(c.Name)
			if !ok {
				return nil, &UnknownColumnError{Name: c.Name}
			}
			key[i] = v
		}
		k := groupKey(key)
		g, ok := groups[k]
		if !ok {
			g = &group{key: key, ids: map[int64]struct{}{}}
			groups[k] = g
		}
		g.ids[rec.PublicationID] = struct{}{}
	}

	rows := make([][]any, 0, len(groups))
	for _, g := range groups {
		row := append(append([]any(nil), g.key...), int64(len(g.ids)))
		rows = append(rows, row)
	}
	SortRows(rows, len(p.groupBy))
	return rows, nil
}

func (p Plan) matches(rec ReportRecord) bool {
	for _, pr := range p.where {
		if !pr.Match(rec) {
			return false
		}
	}
	return true
}

func groupKey(vals []any) string {
	var sb strings.Builder
	for _, v := range vals {
		fmt.Fprintf(&sb, "%T:%v\x00", v, v)
	}
	return sb.String()
}

// SortRows orders rows ascending by their first n cells
// nil sorts after every value, integers compare numerically
func SortRows(rows [][]any, n int) {
	sort.SliceStable(rows, func(i, j int) bool {
		for k := 0; k < n; k++ {
			if c := compareCells(rows[i][k], rows[j][k]); c != 0 {
				return c < 0
			}
		}
		return false
	})
}

func compareCells(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	switch x := a.(type) {
	case int64:
		if y, ok := b.(int64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

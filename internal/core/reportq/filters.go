package reportq

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Op is a predicate operator
type Op uint8

const (
	// OpGTE is an inclusive lower bound
	OpGTE Op = iota + 1
	// OpLTE is an inclusive upper bound
	OpLTE
	// OpIn is set membership
	OpIn
)

func (o Op) String() string {
	switch o {
	case OpGTE:
		return ">="
	case OpLTE:
		return "<="
	case OpIn:
		return "in"
	default:
		return "?"
	}
}

// Predicate is one compiled constraint on a column
// Bound is set for OpGTE and OpLTE, Set for OpIn
type Predicate struct {
	Column ColumnSpec
	Op     Op
	Bound  int64
	Set    []any
}

// Ints returns the set as int64 values, nil for text columns
func (p Predicate) Ints() []int64 {
	if p.Column.Kind.Textual() {
		return nil
	}
	out := make([]int64, 0, len(p.Set))
	for _, v := range p.Set {
		out = append(out, v.(int64))
	}
	return out
}

// Strings returns the set as strings, nil for integer columns
func (p Predicate) Strings() []string {
	if !p.Column.Kind.Textual() {
		return nil
	}
	out := make([]string, 0, len(p.Set))
	for _, v := range p.Set {
		out = append(out, v.(string))
	}
	return out
}

// FilterRequest maps filter field names to a scalar or a collection
type FilterRequest map[string]any

type predicateBuilder func(field string, c ColumnSpec, raw any) (Predicate, bool, error)

// filterField binds a filter key to a column and a predicate builder
type filterField struct {
	key     string
	column  string
	accepts []Kind
	build   predicateBuilder
}

var (
	rangeKinds = []Kind{KindInteger}
	setKinds   = []Kind{KindInteger, KindSet, KindText}
)

// filterTable is the closed set of recognized filter fields
// order here is the order predicates are emitted
var filterTable = []filterField{
	{key: "start_year", column: "year", accepts: rangeKinds, build: bound(OpGTE)},
	{key: "end_year", column: "year", accepts: rangeKinds, build: bound(OpLTE)},
	{key: "publication_types", column: "publication_type_id", accepts: setKinds, build: memberOf},
	{key: "content_types", column: "content_type", accepts: setKinds, build: memberOf},
	{key: "faculties", column: "faculty_id", accepts: setKinds, build: memberOf},
	{key: "departments", column: "department_id", accepts: setKinds, build: memberOf},
	{key: "persons", column: "xaccount", accepts: setKinds, build: memberOf},
}

// FilterFields lists the recognized filter keys
func FilterFields() []string {
	out := make([]string, len(filterTable))
	for i, f := range filterTable {
		out[i] = f.key
	}
	return out
}

// checkFilterTable verifies every filter targets a registered column of a kind its builder handles
func checkFilterTable(r *Registry) error {
	seen := map[string]bool{}
	for _, f := range filterTable {
		if seen[f.key] {
			return fmt.Errorf("reportq: duplicate filter %q", f.key)
		}
		seen[f.key] = true
		c, ok := r.byName[f.column]
		if !ok {
			return fmt.Errorf("reportq: filter %q targets unregistered column %q", f.key, f.column)
		}
		if !kindIn(c.Kind, f.accepts) {
			return fmt.Errorf("reportq: filter %q cannot constrain %s column %q", f.key, c.Kind, c.Name)
		}
	}
	return nil
}

func kindIn(k Kind, ks []Kind) bool {
	for _, x := range ks {
		if x == k {
			return true
		}
	}
	return false
}

// CompileFilters turns req into a conjunction of predicates
// unknown keys are ignored and blank values yield no predicate
func (r *Registry) CompileFilters(req FilterRequest) ([]Predicate, error) {
	if len(req) == 0 {
		return nil, nil
	}
	var out []Predicate
	for _, f := range filterTable {
		raw, ok := req[f.key]
		if !ok || blank(raw) {
			continue
		}
		p, ok, err := f.build(f.key, r.byName[f.column], raw)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func bound(op Op) predicateBuilder {
	return func(field string, c ColumnSpec, raw any) (Predicate, bool, error) {
		if isList(raw) {
			vals := listOf(raw)
			if len(vals) != 1 {
				return Predicate{}, false, &InvalidFilterError{Field: field, Value: raw, Reason: "expected a single integer"}
			}
			raw = vals[0]
		}
		if blank(raw) {
			return Predicate{}, false, nil
		}
		n, err := toInt(raw)
		if err != nil {
			return Predicate{}, false, &InvalidFilterError{Field: field, Value: raw, Reason: err.Error()}
		}
		return Predicate{Column: c, Op: op, Bound: n}, true, nil
	}
}

func memberOf(field string, c ColumnSpec, raw any) (Predicate, bool, error) {
	vals := []any{raw}
	if isList(raw) {
		vals = listOf(raw)
	}
	seen := map[any]bool{}
	set := make([]any, 0, len(vals))
	for _, v := range vals {
		if blank(v) {
			continue
		}
		var cell any
		if c.Kind.Textual() {
			s, err := toText(v)
			if err != nil {
				return Predicate{}, false, &InvalidFilterError{Field: field, Value: v, Reason: err.Error()}
			}
			cell = s
		} else {
			n, err := toInt(v)
			if err != nil {
				return Predicate{}, false, &InvalidFilterError{Field: field, Value: v, Reason: err.Error()}
			}
			cell = n
		}
		if seen[cell] {
			continue
		}
		seen[cell] = true
		set = append(set, cell)
	}
	if len(set) == 0 {
		return Predicate{}, false, nil
	}
	return Predicate{Column: c, Op: OpIn, Set: set}, true, nil
}

// blank matches nil, whitespace strings and collections of blanks
func blank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case json.Number:
		return strings.TrimSpace(string(t)) == ""
	}
	if isList(v) {
		for _, x := range listOf(v) {
			if !blank(x) {
				return false
			}
		}
		return true
	}
	if m, ok := v.(map[string]any); ok {
		return len(m) == 0
	}
	return false
}

func isList(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func listOf(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	}
	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func toInt(v any) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case uint32:
		return int64(t), nil
	case float64:
		// int64 holds [-2^63, 2^63)
		if t != math.Trunc(t) || math.IsNaN(t) || t >= 1<<63 || t < -(1<<63) {
			return 0, fmt.Errorf("expected an integer")
		}
		return int64(t), nil
	case json.Number:
		return strconv.ParseInt(strings.TrimSpace(string(t)), 10, 64)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("expected an integer")
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected an integer")
	}
}

func toText(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return string(t), nil
	case int, int32, int64:
		return fmt.Sprint(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("expected text")
	}
}

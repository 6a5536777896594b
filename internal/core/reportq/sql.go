package reportq

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	viewRe  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
)

// ValidView reports whether name is usable as a (schema qualified) relation name
func ValidView(name string) bool { return viewRe.MatchString(name) }

// Dialect renders the backend specific bits of a plan
type Dialect struct {
	Name string

	placeholder func(n int) string
	member      func(b *sqlBuilder, p Predicate) string
	project     func(c ColumnSpec) string
}

// Postgres binds with $n and tests membership with = ANY over a typed array
var Postgres = Dialect{
	Name:        "postgres",
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	member: func(b *sqlBuilder, p Predicate) string {
		var arg any = p.Ints()
		if p.Column.Kind.Textual() {
			arg = p.Strings()
		}
		return p.Column.Name + " = ANY(" + b.bind(arg) + ")"
	},
	project: func(c ColumnSpec) string { return c.Name },
}

// ClickHouse binds positionally and normalizes group cells to Int64 or String
var ClickHouse = Dialect{
	Name:        "clickhouse",
	placeholder: func(int) string { return "?" },
	member: func(b *sqlBuilder, p Predicate) string {
		ph := make([]string, len(p.Set))
		for i, v := range p.Set {
			ph[i] = b.bind(v)
		}
		return p.Column.Name + " IN (" + strings.Join(ph, ", ") + ")"
	},
	project: func(c ColumnSpec) string {
		if c.Kind.Textual() {
			return "toString(" + c.Name + ")"
		}
		return "toInt64(" + c.Name + ")"
	},
}

type sqlBuilder struct {
	d    Dialect
	args []any
}

func (b *sqlBuilder) bind(v any) string {
	b.args = append(b.args, v)
	return b.d.placeholder(len(b.args))
}

// SQL renders the plan against view
// identifiers only ever come from the registry, values only ever travel as args
func (p Plan) SQL(d Dialect, view string) (string, []any, error) {
	if !ValidView(view) {
		return "", nil, fmt.Errorf("reportq: invalid view name %q", view)
	}
	if d.placeholder == nil {
		return "", nil, fmt.Errorf("reportq: zero dialect")
	}
	b := &sqlBuilder{d: d}

	var where string
	if len(p.where) > 0 {
		conds := make([]string, 0, len(p.where))
		for _, pr := range p.where {
			switch pr.Op {
			case OpGTE:
				conds = append(conds, pr.Column.Name+" >= "+b.bind(pr.Bound))
			case OpLTE:
				conds = append(conds, pr.Column.Name+" <= "+b.bind(pr.Bound))
			case OpIn:
				conds = append(conds, d.member(b, pr))
			default:
				return "", nil, fmt.Errorf("reportq: unsupported operator %v", pr.Op)
			}
		}
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var sb strings.Builder
	if !p.Grouped() {
		sb.WriteString("SELECT count(DISTINCT " + IdentityColumn + ") AS n FROM ")
		sb.WriteString(view)
		sb.WriteString(where)
		return sb.String(), b.args, nil
	}

	sel := make([]string, 0, len(p.groupBy)+1)
	keys := make([]string, 0, len(p.groupBy))
	for i, c := range p.groupBy {
		alias := "g" + strconv.Itoa(i)
		sel = append(sel, d.project(c)+" AS "+alias)
		keys = append(keys, alias)
	}
	sel = append(sel, "count(DISTINCT "+IdentityColumn+") AS n")

	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(sel, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(view)
	sb.WriteString(where)
	sb.WriteString(" GROUP BY ")
	sb.WriteString(strings.Join(keys, ", "))
	sb.WriteString(" ORDER BY ")
	sb.WriteString(strings.Join(keys, ", "))
	return sb.String(), b.args, nil
}

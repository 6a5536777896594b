// Package reportq turns a filter map and a list of group columns into a
// distinct-count report and renders it as structured data, tab text or xlsx
package reportq

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is the semantic type of a report column
type Kind uint8

const (
	// KindInteger columns hold integers and accept inclusive range bounds
	KindInteger Kind = iota + 1
	// KindSet columns hold integer identifiers and accept set membership
	KindSet
	// KindText columns hold text tags and accept set membership
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindSet:
		return "set"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Textual reports whether cells of this kind are strings
func (k Kind) Textual() bool { return k == KindText }

// CountColumn is the synthetic trailing column of every report
const CountColumn = "count"

// LabelPrefix prefixes every column label key in the catalogs
const LabelPrefix = "reports.columns."

// ColumnSpec declares one groupable column of the report view
type ColumnSpec struct {
	Name     string
	Kind     Kind
	LabelKey string
}

func col(name string, k Kind) ColumnSpec {
	return ColumnSpec{Name: name, Kind: k, LabelKey: LabelPrefix + name}
}

// Columns is the groupable column set of the publication report view
var Columns = []ColumnSpec{
	col("year", KindInteger),
	col("publication_type_id", KindSet),
	col("content_type", KindText),
	col("faculty_id", KindSet),
	col("department_id", KindSet),
	col("xaccount", KindText),
}

// IdentityColumn is the record identity counted per group
const IdentityColumn = "publication_id"

// Translator resolves a catalog key for a locale
type Translator interface {
	Translate(locale, key string) (string, error)
}

// Labels maps column names, count included, to display text
type Labels map[string]string

// Registry is the immutable column and label table
// safe for concurrent reads once built
type Registry struct {
	specs  []ColumnSpec
	byName map[string]ColumnSpec
	labels map[string]Labels
	def    string
}

// NewRegistry builds a registry over specs and resolves every label for every locale
// a missing translation or an inconsistent filter table is an error
func NewRegistry(specs []ColumnSpec, tr Translator, locales []string, def string) (*Registry, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("reportq: empty column set")
	}
	if tr == nil {
		return nil, fmt.Errorf("reportq: nil translator")
	}
	if len(locales) == 0 {
		return nil, fmt.Errorf("reportq: no locales")
	}

	r := &Registry{
		specs:  append([]ColumnSpec(nil), specs...),
		byName: make(map[string]ColumnSpec, len(specs)),
		labels: make(map[string]Labels, len(locales)),
		def:    def,
	}
	for _, s := range specs {
		if s.Name == "" || s.Name == CountColumn || s.Name == IdentityColumn {
			return nil, fmt.Errorf("reportq: reserved column name %q", s.Name)
		}
		if !identRe.MatchString(s.Name) {
			return nil, fmt.Errorf("reportq: column %q is not a plain identifier", s.Name)
		}
		if _, dup := r.byName[s.Name]; dup {
			return nil, fmt.Errorf("reportq: duplicate column %q", s.Name)
		}
		if s.Kind < KindInteger || s.Kind > KindText {
			return nil, fmt.Errorf("reportq: column %q has no kind", s.Name)
		}
		if s.LabelKey == "" {
			s.LabelKey = LabelPrefix + s.Name
		}
		r.byName[s.Name] = s
	}
	for i := range r.specs {
		r.specs[i] = r.byName[r.specs[i].Name]
	}

	if err := checkFilterTable(r); err != nil {
		return nil, err
	}

	for _, loc := range locales {
		lb := make(Labels, len(specs)+1)
		for _, s := range r.specs {
			text, err := tr.Translate(loc, s.LabelKey)
			if err != nil {
				return nil, fmt.Errorf("reportq: label %s for %s: %w", s.LabelKey, loc, err)
			}
			lb[s.Name] = text
		}
		text, err := tr.Translate(loc, LabelPrefix+CountColumn)
		if err != nil {
			return nil, fmt.Errorf("reportq: count label for %s: %w", loc, err)
		}
		lb[CountColumn] = text
		r.labels[loc] = lb
	}
	if _, ok := r.labels[def]; !ok {
		return nil, fmt.Errorf("reportq: default locale %q not among %v", def, locales)
	}
	return r, nil
}

// Columns returns the registered columns in declaration order
func (r *Registry) Columns() []ColumnSpec { return append([]ColumnSpec(nil), r.specs...) }

// Column looks up a registered column
func (r *Registry) Column(name string) (ColumnSpec, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// ColumnsValid reports whether every name is a registered groupable column
// empty input is valid
func (r *Registry) ColumnsValid(names []string) bool {
	for _, n := range names {
		if _, ok := r.byName[n]; !ok {
			return false
		}
	}
	return true
}

// Locale maps an unknown locale to the default one
func (r *Registry) Locale(locale string) string {
	if _, ok := r.labels[locale]; ok {
		return locale
	}
	return r.def
}

// Locales lists the locales labels were resolved for
func (r *Registry) Locales() []string {
	out := make([]string, 0, len(r.labels))
	for l := range r.labels {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// LabelFor returns the display label of a column or of the count column
func (r *Registry) LabelFor(locale, name string) (string, error) {
	lb := r.labels[r.Locale(locale)]
	text, ok := lb[name]
	if !ok {
		return "", &UnknownColumnError{Name: name}
	}
	return text, nil
}

// Labels returns a copy of the label table for locale
func (r *Registry) Labels(locale string) Labels {
	src := r.labels[r.Locale(locale)]
	out := make(Labels, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func (r *Registry) invalid(names []string) []string {
	var bad []string
	for _, n := range names {
		if _, ok := r.byName[n]; !ok {
			bad = append(bad, n)
		}
	}
	return bad
}

func quoteAll(names []string) string {
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(q, ", ")
}

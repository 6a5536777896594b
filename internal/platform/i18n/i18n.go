// Package i18n loads embedded yaml catalogs into a universal translator
// and negotiates a request locale
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/sv"
	ut "github.com/go-playground/universal-translator"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yml
var catalogFS embed.FS

// DefaultLocale is used when nothing better can be negotiated
const DefaultLocale = "sv"

// known maps a catalog file stem to its CLDR rules
var known = map[string]func() locales.Translator{
	"en": en.New,
	"sv": sv.New,
}

// Catalog resolves dotted keys per locale
type Catalog struct {
	uni     *ut.UniversalTranslator
	def     string
	names   []string
	tags    []language.Tag
	matcher language.Matcher
	keys    map[string]map[string]struct{}
}

// Load reads every embedded catalog and registers its keys
// def must be one of the embedded locales
func Load(def string) (*Catalog, error) {
	return LoadFS(catalogFS, "locales", def)
}

// LoadFS is Load over an arbitrary fs, mostly for tests
func LoadFS(fsys fs.FS, dir, def string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read catalogs: %w", err)
	}

	flat := map[string]map[string]string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yml") {
			continue
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", e.Name(), err)
		}
		var doc map[string]any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", e.Name(), err)
		}
		for loc, tree := range doc {
			if _, ok := known[loc]; !ok {
				return nil, fmt.Errorf("i18n: unsupported locale %q in %s", loc, e.Name())
			}
			if flat[loc] == nil {
				flat[loc] = map[string]string{}
			}
			flatten("", tree, flat[loc])
		}
	}
	if len(flat) == 0 {
		return nil, fmt.Errorf("i18n: no catalogs under %s", dir)
	}

	def = strings.ToLower(strings.TrimSpace(def))
	if def == "" {
		def = DefaultLocale
	}
	if _, ok := flat[def]; !ok {
		return nil, fmt.Errorf("i18n: default locale %q has no catalog", def)
	}

	// default first so the matcher falls back to it
	names := make([]string, 0, len(flat))
	for loc := range flat {
		if loc != def {
			names = append(names, loc)
		}
	}
	sort.Strings(names)
	names = append([]string{def}, names...)

	supported := make([]locales.Translator, 0, len(names))
	tags := make([]language.Tag, 0, len(names))
	for _, n := range names {
		supported = append(supported, known[n]())
		tags = append(tags, language.Make(n))
	}
	uni := ut.New(known[def](), supported...)

	c := &Catalog{
		uni:     uni,
		def:     def,
		names:   names,
		tags:    tags,
		matcher: language.NewMatcher(tags),
		keys:    map[string]map[string]struct{}{},
	}
	for _, n := range names {
		tr, found := uni.GetTranslator(n)
		if !found {
			return nil, fmt.Errorf("i18n: no translator for %q", n)
		}
		c.keys[n] = map[string]struct{}{}
		for k, v := range flat[n] {
			if err := tr.Add(k, v, false); err != nil {
				return nil, fmt.Errorf("i18n: %s %s: %w", n, k, err)
			}
			c.keys[n][k] = struct{}{}
		}
	}
	return c, nil
}

func flatten(prefix string, v any, out map[string]string) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, child, out)
		}
	case nil:
		out[prefix] = ""
	default:
		out[prefix] = fmt.Sprint(t)
	}
}

// Default returns the fallback locale
func (c *Catalog) Default() string { return c.def }

// Locales lists the loaded locales, default first
func (c *Catalog) Locales() []string { return append([]string(nil), c.names...) }

// Has reports whether locale has a catalog
func (c *Catalog) Has(locale string) bool {
	_, ok := c.keys[locale]
	return ok
}

// Translate returns the text for key in locale
// a missing key is an error, never an empty string
func (c *Catalog) Translate(locale, key string) (string, error) {
	if _, ok := c.keys[locale]; !ok {
		return "", fmt.Errorf("i18n: unknown locale %q", locale)
	}
	if _, ok := c.keys[locale][key]; !ok {
		return "", fmt.Errorf("i18n: missing %q for %q", key, locale)
	}
	tr, _ := c.uni.GetTranslator(locale)
	return tr.T(key)
}

// Match picks the best loaded locale for an Accept-Language style value
func (c *Catalog) Match(accept string) string {
	accept = strings.TrimSpace(accept)
	if accept == "" {
		return c.def
	}
	if c.Has(strings.ToLower(accept)) {
		return strings.ToLower(accept)
	}
	prefs, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(prefs) == 0 {
		return c.def
	}
	_, idx, conf := c.matcher.Match(prefs...)
	if conf == language.No || idx < 0 || idx >= len(c.names) {
		return c.def
	}
	return c.names[idx]
}

// FromRequest negotiates the locale for r
// an explicit ?locale= wins over Accept-Language
func (c *Catalog) FromRequest(r *http.Request) string {
	if r == nil {
		return c.def
	}
	if q := r.URL.Query().Get("locale"); q != "" {
		return c.Match(q)
	}
	return c.Match(r.Header.Get("Accept-Language"))
}

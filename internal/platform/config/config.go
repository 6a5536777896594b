// Package config reads settings from the environment, optionally layered
// over a yaml file. Keys are upper case and namespaced by prefix, e.g.
// SERVICE_PGSQL_DBURL
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"pubreg/internal/platform/logger"

	"gopkg.in/yaml.v3"
)

// Conf is a prefixed view over the settings. The zero value reads the
// environment only
type Conf struct {
	prefix string
	file   map[string]string
}

// New returns the root view over the environment
func New() Conf { return Conf{} }

// Load returns the root view with the yaml file at path underneath the
// environment. Nested maps are flattened with "_", so
//
//	service:
//	  pgsql:
//	    dburl: postgres://...
//
// is SERVICE_PGSQL_DBURL. An empty path is New()
func Load(path string) (Conf, error) {
	if path == "" {
		return New(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Conf{}, fmt.Errorf("config: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Conf{}, fmt.Errorf("config: %s: %w", path, err)
	}
	flat := map[string]string{}
	flatten("", doc, flat)
	return Conf{file: flat}, nil
}

func flatten(prefix string, v any, out map[string]string) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			flatten(prefix+strings.ToUpper(k)+"_", child, out)
		}
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, fmt.Sprint(e))
		}
		out[strings.TrimSuffix(prefix, "_")] = strings.Join(parts, ",")
	case nil:
	default:
		out[strings.TrimSuffix(prefix, "_")] = fmt.Sprint(t)
	}
}

// Prefix returns a child view, cfg.Prefix("API_").Prefix("LOG_") reads API_LOG_*
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p, file: c.file} }

func (c Conf) key(k string) string { return c.prefix + k }

// lookup returns the trimmed value of key, env first
func (c Conf) lookup(key string) (string, bool) {
	k := c.key(key)
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v, true
	}
	if v := strings.TrimSpace(c.file[k]); v != "" {
		return v, true
	}
	return "", false
}

// MustString panics when key is unset or blank
func (c Conf) MustString(key string) string {
	v, ok := c.lookup(key)
	if !ok {
		logger.Get().Panic().Str("key", c.key(key)).Msg("missing required setting")
	}
	return v
}

// MayString returns the value of key or def
func (c Conf) MayString(key, def string) string {
	if v, ok := c.lookup(key); ok {
		return v
	}
	return def
}

// mayParse returns def for an unset key and warns, then returns def,
// when the value does not parse
func mayParse[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	s, ok := c.lookup(key)
	if !ok {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Interface("default", def).Msg("invalid setting, using default")
		return def
	}
	return v
}

// MayInt returns key as an int or def
func (c Conf) MayInt(key string, def int) int { return mayParse(c, key, def, strconv.Atoi) }

// MayBool returns key as a bool (strconv.ParseBool) or def
func (c Conf) MayBool(key string, def bool) bool { return mayParse(c, key, def, strconv.ParseBool) }

// MayDuration returns key as a time.Duration ("250ms", "2m") or def
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return mayParse(c, key, def, time.ParseDuration)
}

// MayEnum returns the allowed value key names, ignoring case, or def when
// unset. Any other value panics
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v, ok := c.lookup(key)
	if !ok {
		return def
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a
		}
	}
	logger.Get().Panic().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid setting")
	return ""
}

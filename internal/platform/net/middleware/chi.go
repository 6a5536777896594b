// Package middleware holds the http middleware the api mounts
// most of it is chi's, renamed so callers import one package
package middleware

import (
	"net/http"
	"time"

	chicors "github.com/go-chi/cors"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Middleware is the chi/net/http middleware shape
type Middleware = func(http.Handler) http.Handler

// RequestID assigns or forwards X-Request-Id
func RequestID() Middleware { return chimw.RequestID }

// RealIP rewrites RemoteAddr from proxy headers
func RealIP() Middleware { return chimw.RealIP }

// Timeout cancels the request context after d
func Timeout(d time.Duration) Middleware { return chimw.Timeout(d) }

// NoCache marks every response uncacheable
func NoCache() Middleware { return chimw.NoCache }

// Compress gzips/deflates the content types reports are served as
func Compress(level int) Middleware {
	return chimw.Compress(level,
		"application/json",
		"text/plain",
		"text/csv",
		"text/tab-separated-values",
	)
}

func RedirectSlashes() Middleware { return chimw.RedirectSlashes }

func StripSlashes() Middleware { return chimw.StripSlashes }

// Heartbeat answers path with a bare 200 before routing
func Heartbeat(path string) Middleware { return chimw.Heartbeat(path) }

// CORSOptions is the part of go-chi/cors the api configures
type CORSOptions struct {
	AllowedOrigins []string
	AllowedHeaders []string
	ExposedHeaders []string
	MaxAge         int
}

var (
	defaultMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	defaultHeaders = []string{"Accept", "Accept-Language", "Content-Type", "X-Request-ID"}
)

// CORS wraps go-chi/cors, empty fields fall back to the api's defaults
func CORS(o CORSOptions) Middleware {
	opts := chicors.Options{
		AllowedOrigins: o.AllowedOrigins,
		AllowedMethods: defaultMethods,
		AllowedHeaders: o.AllowedHeaders,
		ExposedHeaders: o.ExposedHeaders,
		MaxAge:         o.MaxAge,
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if len(opts.AllowedHeaders) == 0 {
		opts.AllowedHeaders = defaultHeaders
	}
	return chicors.Handler(opts)
}

// Package httpkit is the routing surface modules register their endpoints on
// modules import it instead of the platform http packages
package httpkit

import (
	"net/http"
	"strings"

	phttp "pubreg/internal/platform/net/http"
	"pubreg/internal/platform/net/http/bind"
)

type (
	// Router is the mount surface
	Router = phttp.Router
	// Response is a return style response
	Response = phttp.Response
	// Envelope is the JSON body of every response
	Envelope = phttp.Envelope
	// JSONOptions controls body parsing
	JSONOptions = bind.JSONOptions
)

// Get mounts a bodyless handler
func Get(r Router, path string, h func(*http.Request) (any, error)) { r.Get(path, phttp.Call(h)) }

// Post mounts a bodyless handler
func Post(r Router, path string, h func(*http.Request) (any, error)) { r.Post(path, phttp.Call(h)) }

// Delete mounts a bodyless handler
func Delete(r Router, path string, h func(*http.Request) (any, error)) { r.Delete(path, phttp.Call(h)) }

// PostJSON mounts a handler taking a validated T body
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.JSONHandler(h))
}

// PostJSONWith is PostJSON with explicit parse options
func PostJSONWith[T any](r Router, path string, opts JSONOptions, h func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.JSONHandlerWith(opts, h))
}

// DeleteJSON mounts a handler taking a validated T body
func DeleteJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Delete(path, phttp.JSONHandler(h))
}

// Attachment returns a download that bypasses the envelope
func Attachment(filename, contentType string, body []byte) Response {
	return phttp.Attachment(filename, contentType, body)
}

// Validate runs struct validation, failures carry the offending field
func Validate(v any) error { return bind.Validate(v) }

// Param returns a path parameter of the matched route
func Param(r *http.Request, key string) string { return phttp.Param(r, key) }

// MountAPI routes /api/{version} through mw and hands the subrouter to mount
func MountAPI(r Router, version string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route("/api/"+strings.TrimPrefix(version, "/"), func(api Router) {
		api.Use(mw...)
		mount(api)
	})
}

// MountAPIV1 is MountAPI for v1
func MountAPIV1(r Router, mw []func(http.Handler) http.Handler, mount func(Router)) {
	MountAPI(r, "v1", mw, mount)
}

// Package http writes every API response in one JSON envelope
package http

import (
	"encoding/json"
	"mime"
	stdhttp "net/http"
	"strconv"

	perr "pubreg/internal/platform/errors"
	pnet "pubreg/internal/platform/net"
)

// Envelope is the body of every non download response
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// JSON writes v with status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Response is what return style handlers produce
// Err wins over File, File wins over Body
type Response struct {
	Status int
	Body   any
	Err    error
	File   *File
}

// File is a download written raw with an attachment disposition
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// OK is a 200 carrying data
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// Error is an error response, status comes from the error code
func Error(err error) Response { return Response{Err: err} }

// Attachment is a 200 download of body named filename
func Attachment(filename, contentType string, body []byte) Response {
	return Response{Status: stdhttp.StatusOK, File: &File{Name: filename, ContentType: contentType, Body: body}}
}

// Handle adapts a return style handler to net/http
func Handle(h func(r *stdhttp.Request) Response) Handler {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	env := Envelope{RequestID: pnet.RequestID(r.Context())}

	switch {
	case resp.Err != nil:
		wire := perr.WireFrom(resp.Err)
		env.StatusCode = perr.HTTPStatus(resp.Err)
		env.Code, env.Error, env.Field = wire.Code, wire.Message, wire.Field
	case resp.File != nil:
		h := w.Header()
		h.Set("Content-Type", resp.File.ContentType)
		h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": resp.File.Name}))
		h.Set("Content-Length", strconv.Itoa(len(resp.File.Body)))
		w.WriteHeader(statusOr(resp.Status))
		_, _ = w.Write(resp.File.Body)
		return
	default:
		env.StatusCode = statusOr(resp.Status)
		env.Data = resp.Body
	}
	env.Status = stdhttp.StatusText(env.StatusCode)
	JSON(w, env.StatusCode, env)
}

func statusOr(s int) int {
	if s == 0 {
		return stdhttp.StatusOK
	}
	return s
}

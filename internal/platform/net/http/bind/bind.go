// Package bind decodes request bodies and runs struct validation
package bind

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "pubreg/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// DefaultMaxBytes caps a body when JSONOptions.MaxBytes is zero
const DefaultMaxBytes = 1 << 20

// JSONOptions controls ParseJSON, the zero value is strict
type JSONOptions struct {
	MaxBytes       int64
	AllowUnknown   bool
	AllowEmptyBody bool
}

var (
	once  sync.Once
	valid *validator.Validate
	trans ut.Translator
)

func setup() {
	loc := en.New()
	trans, _ = ut.New(loc, loc).GetTranslator("en")

	valid = validator.New(validator.WithRequiredStructEnabled())
	valid.RegisterTagNameFunc(jsonName)
	_ = en_translations.RegisterDefaultTranslations(valid, trans)

	for tag, text := range map[string]string{
		"min": "{0} must be at least {1}",
		"max": "{0} must be at most {1}",
	} {
		_ = valid.RegisterTranslation(tag, trans,
			func(t ut.Translator) error { return t.Add(tag, text, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				msg, _ := t.T(fe.Tag(), fe.Field(), fe.Param())
				return msg
			})
	}
}

// jsonName reports fields by their json name
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// ParseJSON reads one JSON value into T and validates it
// an empty body is only accepted when opts allow it or the method carries none
func ParseJSON[T any](r *http.Request, opts JSONOptions) (T, error) {
	var out T
	max := opts.MaxBytes
	if max <= 0 {
		max = DefaultMaxBytes
	}
	defer r.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(r.Body, max+1))
	if err != nil {
		return out, perr.JSONErrf("read body: %v", err)
	}
	if int64(len(raw)) > max {
		return out, perr.JSONErrf("body exceeds %d bytes", max)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		if opts.AllowEmptyBody || r.Method == http.MethodGet || r.Method == http.MethodDelete {
			return out, nil
		}
		return out, perr.JSONErrf("empty body")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if !opts.AllowUnknown {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&out); err != nil {
		return out, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return out, perr.JSONErrf("unexpected trailing data")
	}
	return out, Validate(out)
}

// Validate checks v's validate tags, the first failure names its field
func Validate(v any) error {
	once.Do(setup)
	err := valid.Struct(v)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return perr.Wrap(err, perr.ErrorCodeValidation, "validation error")
	}
	fe := fields[0]
	return perr.WithField(perr.New(perr.ErrorCodeValidation, fe.Translate(trans)), fe.Field())
}

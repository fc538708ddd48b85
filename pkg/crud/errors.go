package crud

import (
	"net/url"
	"strings"
)

// CarriedErrorPrefix names the hidden fields a form uses to post its
// current errors back on a field refresh.
const CarriedErrorPrefix = "_err."

// FieldErrors maps a field name to its message. The zero value is usable
// for reads only.
type FieldErrors map[string]string

func (e FieldErrors) Add(field, msg string) { e[field] = msg }

func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

func (e FieldErrors) Get(field string) string { return e[field] }

func (e FieldErrors) Any() bool { return len(e) > 0 }

// Clear drops the error of one field, as done when the user edits it.
func (e FieldErrors) Clear(field string) { delete(e, field) }

// Merge copies backend field errors without overwriting local ones.
func (e FieldErrors) Merge(other map[string]string) {
	for k, v := range other {
		if _, ok := e[k]; !ok {
			e[k] = v
		}
	}
}

// CarriedErrors rebuilds the errors a form posted back, dropping the one of
// the field that just changed.
func CarriedErrors(form url.Values, changed string) FieldErrors {
	errs := FieldErrors{}
	for k, v := range form {
		field, ok := strings.CutPrefix(k, CarriedErrorPrefix)
		if !ok || field == "" || len(v) == 0 {
			continue
		}
		errs.Add(field, v[0])
	}
	errs.Clear(changed)
	return errs
}

package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	msgNoConnection = "No se pudo conectar con el servidor. Verifique su conexión a internet."
	msgUnauthorized = "No autorizado. Por favor, inicie sesión nuevamente."
	msgForbidden    = "No tiene permisos para realizar esta acción."
	msgNotFound     = "Recurso no encontrado."
	msgServer       = "Error interno del servidor. Por favor, intente más tarde."
	msgUnknown      = "Error desconocido del servidor"

	maxTextDetail = 200
)

// Error is the normalized failure of a backend call. Message is ready to be
// shown to the user.
type Error struct {
	Status  int // 0 when no response was received
	Message string
	Detail  string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// IsAuth reports an unauthenticated or forbidden response.
func (e *Error) IsAuth() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// Labels translates backend field names into display names.
type Labels map[string]string

func (l Labels) Label(field string) string {
	if v, ok := l[field]; ok {
		return v
	}
	return field
}

func networkError(err error) *Error {
	return &Error{Message: msgNoConnection, Err: err}
}

func configError(err error) *Error {
	return &Error{Message: "Error de configuración: " + err.Error(), Err: err}
}

func responseError(status int, body []byte, labels Labels) *Error {
	detail := FormatValidationErrors(body, labels)
	e := &Error{Status: status, Detail: detail, Err: fmt.Errorf("backend status %d", status)}
	switch status {
	case http.StatusBadRequest:
		e.Message = "Datos inválidos: " + detail
		e.Fields = fieldErrors(body)
	case http.StatusUnauthorized:
		e.Message = msgUnauthorized
	case http.StatusForbidden:
		e.Message = msgForbidden
	case http.StatusNotFound:
		e.Message = msgNotFound
	case http.StatusInternalServerError:
		e.Message = msgServer
	default:
		e.Message = fmt.Sprintf("Error del servidor (%d): %s", status, detail)
	}
	return e
}

// FormatValidationErrors flattens a backend error body into one display line:
// "Label: msg1, msg2; Label2: msg". Field order follows the body.
func FormatValidationErrors(body []byte, labels Labels) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return msgUnknown
	}
	switch body[0] {
	case '{':
		fields, err := orderedFields(body)
		if err != nil {
			return msgUnknown
		}
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, labels.Label(f.name)+": "+f.text)
		}
		return strings.Join(parts, "; ")
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return msgUnknown
		}
		parts := make([]string, 0, len(items))
		for _, it := range items {
			parts = append(parts, valueText(it))
		}
		return strings.Join(parts, "; ")
	case '"':
		var s string
		if err := json.Unmarshal(body, &s); err == nil {
			return s
		}
	case '<':
		if text := htmlTitle(body); text != "" {
			return truncate(text)
		}
	}
	return truncate(string(body))
}

func truncate(text string) string {
	if r := []rune(text); len(r) > maxTextDetail {
		return string(r[:maxTextDetail]) + "..."
	}
	return text
}

// htmlTitle reduces an HTML error page (proxy or debug page) to its title,
// or its first heading.
func htmlTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	for _, sel := range []string{"title", "h1"} {
		if t := strings.Join(strings.Fields(doc.Find(sel).First().Text()), " "); t != "" {
			return t
		}
	}
	return ""
}

type fieldMsg struct {
	name string
	text string
}

func orderedFields(body []byte) ([]fieldMsg, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var out []fieldMsg
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		out = append(out, fieldMsg{name: name, text: valueText(raw)})
	}
	return out, nil
}

// valueText renders one field value: arrays joined by ", ", strings as-is.
func valueText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err == nil {
			parts := make([]string, 0, len(items))
			for _, it := range items {
				parts = append(parts, valueText(it))
			}
			return strings.Join(parts, ", ")
		}
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

func fieldErrors(body []byte) map[string]string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil
	}
	fields, err := orderedFields(body)
	if err != nil {
		return nil
	}
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f.name] = f.text
	}
	return out
}

// AsError extracts the normalized error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsAuth reports whether err is a 401/403 from the backend.
func IsAuth(err error) bool {
	e, ok := AsError(err)
	return ok && e.IsAuth()
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	e, ok := AsError(err)
	return ok && e.Status == http.StatusNotFound
}

// Message returns a display message for any error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := AsError(err); ok {
		return e.Message
	}
	return err.Error()
}

package web

import (
	"encoding/json"
	"html/template"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"cooperativa/entities"
	"cooperativa/pkg/crud"
	"cooperativa/pkg/labor"
	"cooperativa/pkg/paymentmethod"
)

var printer = message.NewPrinter(language.Spanish)

// Funcs are the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"money":           Money,
		"num":             Num,
		"date":            crud.DisplayDate,
		"datetime":        DateTime,
		"selected":        selected,
		"checked":         checked,
		"add":             func(a, b int) int { return a + b },
		"sub":             func(a, b int) int { return a - b },
		"pageLink":        PageLink,
		"json":            toJSON,
		"orDash":          orDash,
		"laborType":       labor.TypeLabel,
		"laborState":      labor.StateLabel,
		"laborNextStates": labor.NextStates,
		"paymentType":     paymentmethod.TypeLabel,
		"lower":           strings.ToLower,
	}
}

// Money formats an amount the way the cooperative reads it: "$ 1.500,00".
func Money(v any) string {
	f, ok := toFloat(v)
	if !ok {
		return "-"
	}
	return printer.Sprintf("$ %.2f", f)
}

// Num formats a quantity with Spanish separators and up to two decimals.
func Num(v any) string {
	f, ok := toFloat(v)
	if !ok {
		return "-"
	}
	if f == float64(int64(f)) {
		return printer.Sprintf("%d", int64(f))
	}
	return printer.Sprintf("%.2f", f)
}

func DateTime(s string) string {
	if s == "" {
		return "N/A"
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return crud.DisplayDate(s)
	}
	return t.Format("02/01/2006 15:04")
}

// PageLink returns the query string for page n keeping the other params.
func PageLink(q url.Values, n int) string {
	out := url.Values{}
	for k, v := range q {
		out[k] = v
	}
	out.Set("page", strconv.Itoa(n))
	return "?" + out.Encode()
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case entities.Number:
		return x.V, x.Set
	case *entities.Number:
		if x == nil {
			return 0, false
		}
		return x.V, x.Set
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}

func selected(a, b string) template.HTMLAttr {
	if a == b {
		return "selected"
	}
	return ""
}

func checked(b bool) template.HTMLAttr {
	if b {
		return "checked"
	}
	return ""
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

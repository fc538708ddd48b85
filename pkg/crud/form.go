package crud

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout    = "2006-01-02"
	DisplayLayout = "02/01/2006"

	// Form actions posted in the _action field.
	ActionSubmit  = "submit"
	ActionRefresh = "refresh"
)

func DateOnly(t time.Time) string { return t.Format(DateLayout) }

// Today is the current date in loc, as sent to the backend.
func Today(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return DateOnly(time.Now().In(loc))
}

func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DisplayDate renders an ISO date or timestamp as dd/mm/yyyy. Unparseable
// input is returned unchanged.
func DisplayDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= len(DateLayout) {
		if t, ok := ParseDate(s[:len(DateLayout)]); ok {
			return t.Format(DisplayLayout)
		}
	}
	return s
}

// ParseFloat parses a form number; "" is reported as absent.
func ParseFloat(s string) (float64, bool, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// IsFutureDate reports whether date (yyyy-mm-dd) is after today in loc.
func IsFutureDate(date string, loc *time.Location) bool {
	d, ok := ParseDate(date)
	if !ok {
		return false
	}
	today, _ := ParseDate(Today(loc))
	return d.After(today)
}

// ParseID reads a positive path id.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// Package crud holds the pieces every resource screen shares: list responses,
// pagination, filters, field errors and the degraded list loader.
package crud

import (
	"bytes"
	"encoding/json"
)

// Page is a list response. The backend answers either with the paginated
// envelope or with a bare array.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func (p *Page[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var items []T
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*p = Page[T]{Count: len(items), Results: items}
		return nil
	}
	var env struct {
		Count    int     `json:"count"`
		Next     *string `json:"next"`
		Previous *string `json:"previous"`
		Results  []T     `json:"results"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	*p = Page[T]{Count: env.Count, Next: env.Next, Previous: env.Previous, Results: env.Results}
	if p.Count == 0 && len(p.Results) > 0 {
		p.Count = len(p.Results)
	}
	return nil
}

// PageOf wraps an in-memory slice.
func PageOf[T any](items []T) Page[T] {
	return Page[T]{Count: len(items), Results: items}
}

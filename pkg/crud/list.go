package crud

import (
	"context"

	"cooperativa/pkg/apiclient"
)

// ListState is what a list page renders: the rows, the total count and,
// when the fetch failed, the error message and whether example rows were
// substituted.
type ListState[T any] struct {
	Items    []T
	Count    int
	Error    string
	Degraded bool
}

// LoadList runs fetch. On failure the normalized message is kept and, when
// fallback is non-nil, its rows stand in for the real ones.
func LoadList[T any](ctx context.Context, fetch func(context.Context) (Page[T], error), fallback func() []T) ListState[T] {
	page, err := fetch(ctx)
	if err == nil {
		return ListState[T]{Items: page.Results, Count: page.Count}
	}
	st := ListState[T]{Error: apiclient.Message(err)}
	if fallback != nil {
		st.Items = fallback()
		st.Count = len(st.Items)
		st.Degraded = true
	}
	return st
}

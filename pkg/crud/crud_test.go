package crud

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID   int    `json:"id"`
	Name string `json:"nombre"`
}

func TestPageDecodesBothShapes(t *testing.T) {
	var p Page[row]
	require.NoError(t, json.Unmarshal([]byte(`{"count":40,"next":"x","results":[{"id":1,"nombre":"a"}]}`), &p))
	assert.Equal(t, 40, p.Count)
	assert.Len(t, p.Results, 1)
	require.NotNil(t, p.Next)

	require.NoError(t, json.Unmarshal([]byte(`[{"id":1},{"id":2}]`), &p))
	assert.Equal(t, 2, p.Count)
	assert.Nil(t, p.Next)
	assert.Equal(t, 2, p.Results[1].ID)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 10, TotalPages(237, 25))
	assert.Equal(t, 1, TotalPages(25, 25))
	assert.Equal(t, 0, TotalPages(0, 25))
}

func TestPageWindow(t *testing.T) {
	render := func(links []PageLink) []string {
		out := make([]string, 0, len(links))
		for _, l := range links {
			switch {
			case l.Ellipsis:
				out = append(out, "...")
			case l.Current:
				out = append(out, "["+strconv.Itoa(l.Number)+"]")
			default:
				out = append(out, strconv.Itoa(l.Number))
			}
		}
		return out
	}
	assert.Equal(t, []string{"1", "...", "4", "[5]", "6", "...", "10"}, render(PageWindow(5, 10)))
	assert.Equal(t, []string{"[1]", "2", "...", "10"}, render(PageWindow(1, 10)))
	assert.Equal(t, []string{"1", "2", "[3]"}, render(PageWindow(3, 3)))
}

func TestNewPagerClamps(t *testing.T) {
	p := NewPager(99, 25, 60)
	assert.Equal(t, 3, p.Page)
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext())
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, Paginate(items, 2, 2))
	assert.Equal(t, []int{5}, Paginate(items, 3, 2))
	assert.Nil(t, Paginate(items, 4, 2))
}

func TestBuildParams(t *testing.T) {
	p := BuildParams(Filters{"fechaDesde": "2024-01-01", "tipo": " ", "otro": "x"},
		map[string]string{"fechaDesde": "fecha_labor_desde", "tipo": "labor_tipo"})
	assert.Equal(t, "2024-01-01", p.Get("fecha_labor_desde"))
	assert.False(t, p.Has("otro"))
	assert.False(t, p.Has("labor_tipo"))
	assert.False(t, Filters{"a": ""}.Active())
}

func TestDistinctAndMatch(t *testing.T) {
	assert.Equal(t, []string{"Norte", "Sur"}, Distinct([]string{"Sur", "", "Norte", "Sur"}))
	assert.True(t, MatchAny("GALA", "Manzana", "Gala"))
	assert.True(t, MatchAny("", "x"))
	assert.False(t, MatchAny("uva", "Manzana"))
}

func TestFieldErrors(t *testing.T) {
	e := FieldErrors{}
	e.Add("nombre", "local")
	e.Merge(map[string]string{"nombre": "backend", "orden": "malo"})
	assert.Equal(t, "local", e.Get("nombre"))
	assert.True(t, e.Has("orden"))
	e.Clear("orden")
	assert.False(t, e.Has("orden"))
	assert.True(t, e.Any())
}

func TestCarriedErrors(t *testing.T) {
	form := url.Values{
		"_err.campaña": {"Falta ubicación"},
		"_err.parcela": {"Falta ubicación"},
		"_err.":        {"x"},
		"parcela":      {"2"},
	}
	errs := CarriedErrors(form, "parcela")
	assert.Equal(t, FieldErrors{"campaña": "Falta ubicación"}, errs)
	assert.Empty(t, CarriedErrors(nil, "parcela"))
}

func TestDates(t *testing.T) {
	assert.Equal(t, "15/03/2024", DisplayDate("2024-03-15T10:00:00Z"))
	assert.Equal(t, "n/a", DisplayDate("n/a"))
	tomorrow := DateOnly(time.Now().AddDate(0, 0, 2))
	assert.True(t, IsFutureDate(tomorrow, time.Local))
	assert.False(t, IsFutureDate("2020-01-01", time.Local))

	v, ok, err := ParseFloat("12,5")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 12.5, v)
	_, ok, err = ParseFloat("")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadList(t *testing.T) {
	ok := LoadList(context.Background(), func(context.Context) (Page[row], error) {
		return PageOf([]row{{ID: 1}}), nil
	}, nil)
	assert.False(t, ok.Degraded)
	assert.Equal(t, 1, ok.Count)

	failed := LoadList(context.Background(), func(context.Context) (Page[row], error) {
		return Page[row]{}, errors.New("boom")
	}, func() []row { return []row{{ID: 7}, {ID: 8}} })
	assert.True(t, failed.Degraded)
	assert.Equal(t, "boom", failed.Error)
	assert.Equal(t, 2, failed.Count)
}

package serviceImp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cooperativa/entities"
	"cooperativa/pkg/apiclient"
	"cooperativa/pkg/paymentmethod/service"
)

type call struct {
	method, path, query string
	body                any
}

func newService(t *testing.T, reply string) (*paymentMethodSvc, *[]call) {
	t.Helper()
	var calls []call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := call{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			assert.NoError(t, json.Unmarshal(b, &c.body))
		}
		calls = append(calls, c)
		io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	api, err := apiclient.New(apiclient.Options{BaseURL: srv.URL})
	require.NoError(t, err)
	return New(api, zap.NewNop()).(*paymentMethodSvc), &calls
}

func TestEndpoints(t *testing.T) {
	ctx := context.Background()
	s, calls := newService(t, `{}`)

	_, _ = s.Get(ctx, 4)
	_, _ = s.Create(ctx, entities.PaymentMethodPayload{Name: "Efectivo", Type: "EFECTIVO"})
	_, _ = s.Update(ctx, 4, entities.PaymentMethodPayload{})
	_, _ = s.PartialUpdate(ctx, 4, map[string]any{"orden": 2})
	_ = s.Delete(ctx, 4)
	_ = s.ToggleActivation(ctx, 4, false)
	_ = s.Reorder(ctx, []service.OrderItem{{ID: 4, Order: 1}, {ID: 2, Order: 2}})
	_, _ = s.Stats(ctx)
	_, _ = s.ValidateDeletion(ctx, 4)

	want := []string{
		"GET /api/payment-methods/4/",
		"POST /api/payment-methods/",
		"PUT /api/payment-methods/4/",
		"PATCH /api/payment-methods/4/",
		"DELETE /api/payment-methods/4/",
		"PATCH /api/payment-methods/4/activar-desactivar/",
		"POST /api/payment-methods/reordenar/",
		"GET /api/payment-methods/estadisticas/",
		"GET /api/payment-methods/4/validar-eliminacion/",
	}
	got := make([]string, len(*calls))
	for i, c := range *calls {
		got[i] = c.method + " " + c.path
	}
	assert.Equal(t, want, got)

	c := *calls
	assert.Equal(t, map[string]any{"activo": false}, c[5].body)
	assert.Equal(t, map[string]any{"metodos": []any{
		map[string]any{"id": float64(4), "orden": float64(1)},
		map[string]any{"id": float64(2), "orden": float64(2)},
	}}, c[6].body)
	create := c[1].body.(map[string]any)
	assert.Nil(t, create["descripcion"])
	assert.Nil(t, create["configuracion"])
}

func TestListsUnwrapPages(t *testing.T) {
	ctx := context.Background()
	s, calls := newService(t, `{"count":1,"results":[{"id":1,"nombre":"Efectivo","tipo":"EFECTIVO","activo":true,"orden":1}]}`)

	active, err := s.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Efectivo", active[0].Name)

	byType, err := s.ByType(ctx, "EFECTIVO")
	require.NoError(t, err)
	assert.Len(t, byType, 1)
	assert.Equal(t, "tipo=EFECTIVO", (*calls)[1].query)

	page, err := s.List(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)
}

func TestDropdownAcceptsIDNombre(t *testing.T) {
	s, _ := newService(t, `[{"id":1,"nombre":"Efectivo"},{"id":2,"nombre":"Transferencia"}]`)
	opts, err := s.Dropdown(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []entities.Option{{Value: "1", Label: "Efectivo"}, {Value: "2", Label: "Transferencia"}}, opts)
}

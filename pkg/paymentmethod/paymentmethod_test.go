package paymentmethod

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cooperativa/entities"
)

func cardForm() Form {
	return Form{Name: "Visa Gold", Type: TypeCredit, Active: "true", Order: "3", Processor: "Prisma", Commission: "2.5"}
}

func TestValidateName(t *testing.T) {
	cases := map[string]string{
		"":                       "Nombre es requerido",
		"A":                      "El nombre debe tener al menos 2 caracteres",
		strings.Repeat("a", 101): "El nombre no puede exceder los 100 caracteres",
		"Pago <script>":          "Nombre solo puede contener letras, números, espacios, guiones, puntos y paréntesis",
		"Tarjeta (Débito) 2.0":   "",
	}
	for name, want := range cases {
		f := Form{Name: name, Type: TypeCash, Order: "1"}
		assert.Equal(t, want, f.Validate().Get("nombre"), name)
	}
}

func TestValidateOrder(t *testing.T) {
	for order, want := range map[string]string{
		"x":    "El orden debe ser un número entero",
		"-1":   "El orden no puede ser negativo",
		"1001": "El orden no puede ser mayor a 1000",
		"0":    "",
	} {
		f := Form{Name: "Efectivo", Type: TypeCash, Order: order}
		assert.Equal(t, want, f.Validate().Get("orden"), order)
	}
}

func TestValidateCardConfig(t *testing.T) {
	assert.False(t, cardForm().Validate().Any())

	f := cardForm()
	f.Processor = " "
	assert.Equal(t, "Procesador es requerido para métodos de tarjeta", f.Validate().Get("configuracion"))

	f = cardForm()
	f.Commission = ""
	assert.Equal(t, "Comisión porcentual es requerida para métodos de tarjeta", f.Validate().Get("configuracion"))

	f = cardForm()
	f.Commission = "0"
	assert.False(t, f.Validate().Has("configuracion"))

	f = cardForm()
	f.Commission = "120"
	assert.Equal(t, "La comisión debe ser un porcentaje entre 0 y 100", f.Validate().Get("configuracion"))

	f = cardForm()
	f.Extra = "{no json"
	assert.Equal(t, "La configuración debe ser un JSON válido", f.Validate().Get("configuracion"))

	// non-card types ignore processor and commission
	f = Form{Name: "Efectivo", Type: TypeCash, Order: "1"}
	assert.False(t, f.Validate().Any())
}

func TestSetLeavingCardClearsConfig(t *testing.T) {
	f := cardForm()
	f.Extra = `{"cuotas":true}`
	f.Set("tipo", TypeDebit)
	assert.Equal(t, "Prisma", f.Processor)

	f.Set("tipo", TypeTransfer)
	assert.Empty(t, f.Processor)
	assert.Empty(t, f.Commission)
	assert.Empty(t, f.Extra)
}

func TestPayload(t *testing.T) {
	f := cardForm()
	f.Extra = `{"cuotas":true}`
	p, err := f.Payload()
	require.NoError(t, err)
	assert.Equal(t, "Visa Gold", p.Name)
	assert.True(t, p.Active)
	assert.Equal(t, 3, p.Order)
	assert.Nil(t, p.Description)
	assert.Equal(t, map[string]any{"cuotas": true, "procesador": "Prisma", "comision_porcentaje": 2.5}, p.Config)

	p, err = Form{Name: "Efectivo", Type: TypeCash, Active: "false", Order: "1", Description: " Caja "}.Payload()
	require.NoError(t, err)
	assert.False(t, p.Active)
	require.NotNil(t, p.Description)
	assert.Equal(t, "Caja", *p.Description)
	assert.Nil(t, p.Config)
}

func TestFormFromMethodSplitsConfig(t *testing.T) {
	desc := "Tarjeta corporativa"
	f := FormFromMethod(entities.PaymentMethod{
		Name: "Visa", Type: TypeCredit, Active: true, Order: 2, Description: &desc,
		Config: map[string]any{"procesador": "Prisma", "comision_porcentaje": 3.0, "cuotas": true},
	})
	assert.Equal(t, "true", f.Active)
	assert.Equal(t, "2", f.Order)
	assert.Equal(t, "Prisma", f.Processor)
	assert.Equal(t, "3", f.Commission)
	assert.JSONEq(t, `{"cuotas":true}`, f.Extra)
	assert.True(t, f.IsActive())
}

var methods = []entities.PaymentMethod{
	{ID: 1, Name: "Efectivo", Type: TypeCash, Active: true, Order: 1},
	{ID: 2, Name: "Transferencia", Type: TypeTransfer, Active: false, Order: 2},
	{ID: 3, Name: "Visa", Type: TypeCredit, Active: true, Order: 5},
}

func TestNextOrderAndSort(t *testing.T) {
	assert.Equal(t, 6, NextOrder(methods))
	assert.Equal(t, 1, NextOrder(nil))

	rows := []entities.PaymentMethod{{ID: 9, Order: 2}, {ID: 4, Order: 1}, {ID: 3, Order: 2}}
	SortByOrder(rows)
	assert.Equal(t, []int64{4, 3, 9}, []int64{rows[0].ID, rows[1].ID, rows[2].ID})
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches(methods[2], "crédito", "", ""))
	assert.True(t, Matches(methods[0], "", TypeCash, "activo"))
	assert.False(t, Matches(methods[1], "", "", "activo"))
	assert.True(t, Matches(methods[1], "trans", "", "inactivo"))
	assert.False(t, Matches(methods[0], "", TypeCredit, ""))
}

func TestComputeStats(t *testing.T) {
	assert.Equal(t, Stats{Total: 3, Active: 2, Inactive: 1, Types: 3}, ComputeStats(methods))
}

type recordingUpdater struct {
	calls  []entities.PaymentMethodPayload
	ids    []int64
	failAt int
}

func (u *recordingUpdater) Update(_ context.Context, id int64, p entities.PaymentMethodPayload) (entities.PaymentMethod, error) {
	u.ids = append(u.ids, id)
	u.calls = append(u.calls, p)
	if u.failAt == len(u.calls) {
		return entities.PaymentMethod{}, errors.New("backend down")
	}
	return entities.PaymentMethod{ID: id, Order: p.Order}, nil
}

func TestMoveSwapsOrder(t *testing.T) {
	u := &recordingUpdater{}
	moved, err := Move(context.Background(), u, methods, 3, Up)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []int64{3, 2}, u.ids)
	assert.Equal(t, 2, u.calls[0].Order)
	assert.Equal(t, 5, u.calls[1].Order)
	assert.Equal(t, "Visa", u.calls[0].Name)
}

func TestMoveAtEdgesIsNoop(t *testing.T) {
	u := &recordingUpdater{}
	moved, err := Move(context.Background(), u, methods, 1, Up)
	require.NoError(t, err)
	assert.False(t, moved)
	moved, err = Move(context.Background(), u, methods, 3, Down)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Empty(t, u.ids)

	_, err = Move(context.Background(), u, methods, 42, Down)
	assert.Error(t, err)
}

func TestMoveSecondUpdateFails(t *testing.T) {
	u := &recordingUpdater{failAt: 2}
	moved, err := Move(context.Background(), u, methods, 1, Down)
	assert.Error(t, err)
	assert.False(t, moved)
	// the first update is not rolled back
	assert.Len(t, u.calls, 2)
	assert.Equal(t, 2, u.calls[0].Order)
}

func TestDetailOf(t *testing.T) {
	d := DetailOf(entities.PaymentMethod{
		Type:   TypeCredit,
		Config: map[string]any{"comision_porcentaje": 2.5, "cuotas": true, "procesador": "Prisma", "limite": nil},
	})
	assert.Equal(t, "Tarjeta de Crédito", d.TypeName)
	assert.Equal(t, []ConfigEntry{
		{Key: "comision porcentaje", Value: "2.5%"},
		{Key: "cuotas", Value: "Sí"},
		{Key: "limite", Value: "-"},
		{Key: "procesador", Value: "Prisma"},
	}, d.Config)
}

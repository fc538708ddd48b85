package labor

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cooperativa/entities"
	"cooperativa/pkg/crud"
)

var lookups = entities.Lookups{
	Campaigns: []entities.Campaign{{ID: 1, Name: "Campaña 2024", StartDate: "2024-03-01", EndDate: "2024-12-31"}},
	Inputs: []entities.Input{
		{ID: 5, Name: "Urea", Available: entities.NumberOf(40), Unit: "kg"},
		{ID: 6, Name: "Glifosato"},
	},
}

func validForm() Form {
	return Form{
		Date:        "2024-05-10",
		Type:        "RIEGO",
		Status:      StatusPlanned,
		Description: "Riego por goteo",
		Campaign:    "1",
	}
}

func TestValidateRequiresLocation(t *testing.T) {
	f := validForm()
	f.Campaign = ""
	errs := f.Validate(lookups, time.UTC)
	assert.Equal(t, "Debe especificar al menos una campaña o parcela", errs.Get("campaña"))
	assert.Equal(t, "Debe especificar al menos una campaña o parcela", errs.Get("parcela"))

	f.Plot = "9"
	assert.False(t, f.Validate(lookups, time.UTC).Any())
}

func TestValidateRequiredFields(t *testing.T) {
	errs := Form{}.Validate(lookups, time.UTC)
	assert.Equal(t, "La fecha de labor es requerida", errs.Get("fecha_labor"))
	assert.Equal(t, "El tipo de labor es requerido", errs.Get("labor"))
	assert.Equal(t, "La descripción es requerida", errs.Get("descripcion"))
}

func TestValidateFutureDate(t *testing.T) {
	f := validForm()
	f.Date = time.Now().AddDate(0, 0, 3).Format(crud.DateLayout)
	assert.Equal(t, "La fecha de labor no puede ser en el futuro", f.Validate(lookups, time.UTC).Get("fecha_labor"))
}

func TestValidateInputQuantity(t *testing.T) {
	cases := []struct {
		name, input, qty, want string
	}{
		{"missing quantity", "5", "", "Debe especificar la cantidad de insumo utilizada"},
		{"zero", "5", "0", "La cantidad debe ser mayor a 0"},
		{"not a number", "5", "abc", "Debe ser un número válido"},
		{"over stock", "5", "41", "Stock insuficiente. Disponible: 40 kg"},
		{"within stock", "5", "40", ""},
		{"unknown stock", "6", "1000", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := validForm()
			f.Input, f.InputQuantity = tc.input, tc.qty
			assert.Equal(t, tc.want, f.Validate(lookups, time.UTC).Get("cantidad_insumo"))
		})
	}
}

func TestValidateCostAndDuration(t *testing.T) {
	f := validForm()
	f.EstimatedCost = "-1"
	f.DurationHours = "0"
	errs := f.Validate(lookups, time.UTC)
	assert.Equal(t, "El costo estimado no puede ser negativo", errs.Get("costo_estimado"))
	assert.Equal(t, "La duración debe ser mayor a 0", errs.Get("duracion_horas"))
}

func TestSetClearsQuantityWithoutInput(t *testing.T) {
	f := validForm()
	f.Set("insumo", "5")
	f.Set("cantidad_insumo", "10")
	assert.Equal(t, "10", f.InputQuantity)

	f.Set("insumo", "")
	assert.Empty(t, f.InputQuantity)
}

func TestPayloadSendsNullForEmptyRefs(t *testing.T) {
	f := validForm()
	f.EstimatedCost = "1500,50"
	p, err := f.Payload()
	require.NoError(t, err)

	b, err := json.Marshal(p)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.EqualValues(t, 1, m["campaña"])
	assert.Nil(t, m["parcela"])
	assert.Nil(t, m["insumo"])
	assert.Nil(t, m["cantidad_insumo"])
	assert.Equal(t, 1500.5, m["costo_estimado"])
}

func TestFormFromLaborTrimsDate(t *testing.T) {
	f := FormFromLabor(entities.Labor{
		Date:          "2024-05-10T00:00:00Z",
		Campaign:      entities.RefOf(1),
		InputQuantity: entities.NumberOf(2.5),
	})
	assert.Equal(t, "2024-05-10", f.Date)
	assert.Equal(t, "1", f.Campaign)
	assert.Equal(t, "", f.Plot)
	assert.Equal(t, "2.5", f.InputQuantity)
}

func TestCampaignAdvisory(t *testing.T) {
	c := lookups.Campaigns[0]
	assert.Equal(t, "La fecha no puede ser anterior al inicio de la campaña (01/03/2024)", CampaignAdvisory("2024-02-01", c))
	assert.Equal(t, "La fecha no puede ser posterior al fin de la campaña (31/12/2024)", CampaignAdvisory("2025-01-01", c))
	assert.Empty(t, CampaignAdvisory("2024-06-01", c))
	assert.Empty(t, CampaignAdvisory("", c))

	f := validForm()
	f.Date = "2024-01-15"
	assert.Contains(t, f.Advisory(lookups), "anterior al inicio")
	f.Campaign = "99"
	assert.Empty(t, f.Advisory(lookups))
}

func TestStockInfo(t *testing.T) {
	f := validForm()
	assert.Empty(t, f.StockInfo(lookups))
	f.Input = "5"
	assert.Equal(t, "Stock disponible: 40 kg", f.StockInfo(lookups))
	f.Input = "6"
	assert.Empty(t, f.StockInfo(lookups))
}

func TestBuildSearchParams(t *testing.T) {
	p := BuildSearchParams(crud.Filters{"tipo": "RIEGO", "campana": "3", "fechaDesde": "", "nope": "x"})
	assert.Equal(t, "RIEGO", p.Get("labor_tipo"))
	assert.Equal(t, "3", p.Get("campaña_id"))
	assert.False(t, p.Has("fecha_labor_desde"))
	assert.False(t, p.Has("nope"))
}

func TestNextStates(t *testing.T) {
	assert.Equal(t, []string{StatusCompleted, StatusInProgress, StatusCancelled}, NextStates(StatusPlanned))
	assert.Equal(t, []string{StatusCompleted, StatusCancelled}, NextStates(StatusInProgress))
	assert.Equal(t, []string{StatusCancelled}, NextStates(StatusCompleted))
	assert.Equal(t, []string{StatusCompleted, StatusInProgress}, NextStates(StatusCancelled))
}

func TestComputeStatsAndLabels(t *testing.T) {
	s := ComputeStats([]entities.Labor{{Status: StatusPlanned}, {Status: StatusCompleted}, {Status: StatusCompleted}})
	assert.Equal(t, Stats{Total: 3, Planned: 1, Completed: 2}, s)

	assert.Equal(t, "Fertilización", TypeLabel("FERTILIZACION"))
	assert.Equal(t, "NUEVO TIPO", TypeLabel("NUEVO_TIPO"))
	assert.Equal(t, "En proceso", StateLabel(StatusInProgress))
	assert.Equal(t, "Fecha de labor", FieldLabel("fecha_labor"))
}

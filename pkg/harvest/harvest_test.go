package harvest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cooperativa/entities"
	"cooperativa/pkg/crud"
)

func validForm() Form {
	return Form{
		HarvestDate:       "2024-04-20",
		Quantity:          "1500",
		Unit:              "kg",
		Quality:           "Premium",
		Crop:              "2",
		Labor:             "8",
		Status:            StatusStored,
		Lot:               "1042",
		WarehouseLocation: "Galpón A",
		Campaign:          "1",
	}
}

func TestValidateCampaignXorPlot(t *testing.T) {
	f := validForm()
	assert.False(t, f.Validate(time.UTC).Any())

	f.Plot = "4"
	errs := f.Validate(time.UTC)
	assert.Equal(t, "Solo puede especificar campaña O parcela, no ambas", errs.Get("campania"))
	assert.Equal(t, "Solo puede especificar campaña O parcela, no ambas", errs.Get("parcela"))

	f.Campaign, f.Plot = "", ""
	errs = f.Validate(time.UTC)
	assert.Equal(t, "Debe especificar al menos una campaña o una parcela", errs.Get("campania"))
	assert.Equal(t, "Debe especificar al menos una campaña o una parcela", errs.Get("parcela"))

	f.Plot = "4"
	assert.False(t, f.Validate(time.UTC).Any())
}

func TestValidateRequiredFields(t *testing.T) {
	errs := Form{Campaign: "1"}.Validate(time.UTC)
	for field, want := range map[string]string{
		"fecha_cosecha":     "La fecha de cosecha es requerida",
		"cantidad":          "La cantidad debe ser mayor a 0",
		"unidad_medida":     "La unidad de medida es requerida",
		"calidad":           "La calidad es requerida",
		"cultivo":           "El cultivo es requerido",
		"labor":             "La labor es requerida",
		"lote":              "El lote debe ser mayor a 0",
		"ubicacion_almacen": "La ubicación en almacén es requerida",
	} {
		assert.Equal(t, want, errs.Get(field), field)
	}
}

func TestValidateFutureDateAndQuantity(t *testing.T) {
	f := validForm()
	f.HarvestDate = time.Now().AddDate(0, 1, 0).Format(crud.DateLayout)
	f.Quantity = "-3"
	errs := f.Validate(time.UTC)
	assert.Equal(t, "La fecha de cosecha no puede ser en el futuro", errs.Get("fecha_cosecha"))
	assert.Equal(t, "La cantidad debe ser mayor a 0", errs.Get("cantidad"))
}

func TestSetKeepsLocationExclusive(t *testing.T) {
	f := validForm()
	f.Set("parcela", "4")
	assert.Equal(t, "4", f.Plot)
	assert.Empty(t, f.Campaign)

	f.Set("campania", "1")
	assert.Equal(t, "1", f.Campaign)
	assert.Empty(t, f.Plot)

	f.Set("campania", "")
	assert.Empty(t, f.Campaign)
	assert.Empty(t, f.Plot)
}

func TestPayload(t *testing.T) {
	f := validForm()
	f.Quantity = "1500,5"
	p, err := f.Payload()
	require.NoError(t, err)
	assert.Equal(t, entities.NumberOf(1500.5), p.Quantity)
	assert.Equal(t, entities.NumberOf(1042), p.Lot)
	assert.Equal(t, entities.RefOf(1), p.Campaign)
	assert.False(t, p.Plot.Set)
	assert.Equal(t, "Galpón A", p.WarehouseLocation)
}

func TestFormFromProduct(t *testing.T) {
	f := FormFromProduct(entities.HarvestedProduct{
		HarvestDate: "2024-04-20T10:00:00Z",
		Quantity:    entities.NumberOf(300),
		Lot:         entities.NumberOf(7),
		Plot:        entities.RefOf(4),
	})
	assert.Equal(t, "2024-04-20", f.HarvestDate)
	assert.Equal(t, "300", f.Quantity)
	assert.Equal(t, "7", f.Lot)
	assert.Equal(t, "4", f.Plot)
	assert.Empty(t, f.Campaign)
}

var products = []entities.HarvestedProduct{
	{ID: 1, HarvestDate: "2024-03-01", Status: StatusStored, Lot: entities.NumberOf(1042), CropSpecies: "Maíz", CampaignName: "2024", Quantity: entities.NumberOf(100), NearExpiry: true},
	{ID: 2, HarvestDate: "2024-04-01", Status: StatusSold, Lot: entities.NumberOf(2001), CropSpecies: "Soja", PlotName: "Lote Norte", Quantity: entities.NumberOf(50.5)},
	{ID: 3, HarvestDate: "2024-05-01", Status: StatusStored, Lot: entities.NumberOf(3003), CropSpecies: "Trigo", WarehouseLocation: "Silo 2", Quantity: entities.NumberOf(10)},
}

func filterIDs(f ListFilters) []int64 {
	var out []int64
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p.ID)
		}
	}
	return out
}

func TestListFiltersMatch(t *testing.T) {
	assert.Equal(t, []int64{1, 2, 3}, filterIDs(ListFilters{}))
	assert.Equal(t, []int64{1, 3}, filterIDs(ListFilters{Status: StatusStored}))
	assert.Equal(t, []int64{2}, filterIDs(ListFilters{Search: "200"}))
	assert.Equal(t, []int64{3}, filterIDs(ListFilters{Search: "silo"}))
	assert.Equal(t, []int64{1}, filterIDs(ListFilters{Search: "maíz"}))
	assert.Equal(t, []int64{2}, filterIDs(ListFilters{Plot: "Lote Norte"}))
	assert.Equal(t, []int64{2, 3}, filterIDs(ListFilters{From: "2024-04-01"}))
	assert.Equal(t, []int64{1, 2}, filterIDs(ListFilters{To: "2024-04-01"}))
	assert.Equal(t, []int64{3}, filterIDs(ListFilters{Crop: "Trigo"}))
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats(products)
	assert.Equal(t, 2, s.Stored)
	assert.Equal(t, 1, s.Sold)
	assert.Equal(t, 1, s.NearExpiry)
	assert.InDelta(t, 160.5, s.TotalQuantity, 1e-9)
}

func TestOriginAndCropName(t *testing.T) {
	assert.Equal(t, "Campaña: 2024", Origin(products[0]))
	assert.Equal(t, "Parcela: Lote Norte", Origin(products[1]))
	assert.Equal(t, "", Origin(products[2]))
	assert.Equal(t, "Maíz - Dentado", CropName(entities.HarvestedProduct{CropSpecies: "Maíz", CropVariety: "Dentado"}))
}

func TestParseSale(t *testing.T) {
	v, err := ParseSale("12,5")
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)
	for _, bad := range []string{"", "0", "-1", "abc"} {
		_, err := ParseSale(bad)
		assert.Error(t, err, bad)
	}
}

func TestBuildSearchParams(t *testing.T) {
	p := BuildSearchParams(crud.Filters{"campania": "3", "calidad": "Premium", "estado": "", "x": "y"})
	assert.Equal(t, "3", p.Get("campania_id"))
	assert.Equal(t, "Premium", p.Get("calidad"))
	assert.Len(t, p, 2)
}

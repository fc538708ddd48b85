// Package harvest holds the harvested product rules: catalogues, the
// campaign XOR plot form, local validation, list filters and stats.
package harvest

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"cooperativa/entities"
	"cooperativa/pkg/apiclient"
	"cooperativa/pkg/crud"
)

const (
	StatusStored     = "En Almacén"
	StatusSold       = "Vendido"
	StatusProcessed  = "Procesado"
	StatusExpired    = "Vencido"
	StatusInReview   = "En revision"
	DefaultUnit      = "kg"
	SaleNotes        = "Venta realizada desde el sistema"
	StatusNotes      = "Cambio de estado desde el sistema"
	NearExpiryWindow = 30
)

// Statuses is the catalogue used when the backend cannot serve its own.
var Statuses = []entities.Option{
	{Value: StatusStored, Label: "En Almacén"},
	{Value: StatusSold, Label: "Vendido"},
	{Value: StatusProcessed, Label: "Procesado"},
	{Value: StatusExpired, Label: "Vencido"},
	{Value: StatusInReview, Label: "En revisión"},
}

var Units = []entities.Option{
	{Value: "kg", Label: "Kilogramos"},
	{Value: "ton", Label: "Toneladas"},
	{Value: "qq", Label: "Quintales"},
	{Value: "lb", Label: "Libras"},
	{Value: "saco", Label: "Sacos"},
	{Value: "caja", Label: "Cajas"},
}

var Qualities = []entities.Option{
	{Value: "Premium", Label: "Premium"},
	{Value: "Estándar", Label: "Estándar"},
	{Value: "Comercial", Label: "Comercial"},
	{Value: "Segunda", Label: "Segunda"},
	{Value: "Descarte", Label: "Descarte"},
}

var Labels = apiclient.Labels{
	"fecha_cosecha":     "Fecha de cosecha",
	"cantidad":          "Cantidad",
	"unidad_medida":     "Unidad de medida",
	"calidad":           "Calidad",
	"cultivo":           "Cultivo",
	"labor":             "Labor",
	"estado":            "Estado",
	"lote":              "Lote",
	"ubicacion_almacen": "Ubicación en almacén",
	"campania":          "Campaña",
	"parcela":           "Parcela",
	"observaciones":     "Observaciones",
	"cantidad_vendida":  "Cantidad vendida",
	"nuevo_estado":      "Nuevo estado",
}

var searchFields = map[string]string{
	"fechaDesde":       "fecha_cosecha_desde",
	"fechaHasta":       "fecha_cosecha_hasta",
	"cultivo":          "cultivo_id",
	"campania":         "campania_id",
	"parcela":          "parcela_id",
	"estado":           "estado",
	"lote":             "lote",
	"calidad":          "calidad",
	"labor":            "labor_id",
	"socio":            "socio_id",
	"especie":          "especie",
	"unidadMedida":     "unidad_medida",
	"ubicacionAlmacen": "ubicacion_almacen",
}

// BuildSearchParams maps list filters to the advanced search parameters.
func BuildSearchParams(f crud.Filters) url.Values { return crud.BuildParams(f, searchFields) }

// ListFilters are the in-memory filters of the inventory list. Campaign,
// plot and crop match the display names of the loaded rows.
type ListFilters struct {
	Search   string
	Status   string
	Campaign string
	Plot     string
	Crop     string
	From     string
	To       string
}

func (f ListFilters) Match(p entities.HarvestedProduct) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Campaign != "" && p.CampaignName != f.Campaign {
		return false
	}
	if f.Plot != "" && p.PlotName != f.Plot {
		return false
	}
	if f.Crop != "" && p.CropSpecies != f.Crop {
		return false
	}
	date := p.HarvestDate
	if len(date) > len(crud.DateLayout) {
		date = date[:len(crud.DateLayout)]
	}
	if f.From != "" && date < f.From {
		return false
	}
	if f.To != "" && date > f.To {
		return false
	}
	if f.Search == "" {
		return true
	}
	if strings.Contains(p.Lot.String(), strings.TrimSpace(f.Search)) {
		return true
	}
	return crud.MatchAny(f.Search, p.CropSpecies, p.CropVariety, p.WarehouseLocation, p.MemberName)
}

type Stats struct {
	Stored        int
	Sold          int
	NearExpiry    int
	TotalQuantity float64
}

func ComputeStats(ps []entities.HarvestedProduct) Stats {
	var s Stats
	for _, p := range ps {
		switch p.Status {
		case StatusStored:
			s.Stored++
		case StatusSold:
			s.Sold++
		}
		if p.NearExpiry {
			s.NearExpiry++
		}
		s.TotalQuantity += p.Quantity.V
	}
	return s
}

// Origin describes where the product came from.
func Origin(p entities.HarvestedProduct) string {
	switch {
	case p.OriginDisplay != "":
		return p.OriginDisplay
	case p.CampaignName != "":
		return "Campaña: " + p.CampaignName
	case p.PlotName != "":
		return "Parcela: " + p.PlotName
	}
	return ""
}

// CropName joins species and variety.
func CropName(p entities.HarvestedProduct) string {
	if p.CropVariety == "" {
		return p.CropSpecies
	}
	return p.CropSpecies + " - " + p.CropVariety
}

// Form is the edit state of a harvested product. Foreign keys use "" for no
// selection; campaign and plot exclude each other.
type Form struct {
	HarvestDate       string `form:"fecha_cosecha"`
	Quantity          string `form:"cantidad"`
	Unit              string `form:"unidad_medida"`
	Quality           string `form:"calidad"`
	Crop              string `form:"cultivo"`
	Labor             string `form:"labor"`
	Status            string `form:"estado"`
	Lot               string `form:"lote"`
	WarehouseLocation string `form:"ubicacion_almacen"`
	Campaign          string `form:"campania"`
	Plot              string `form:"parcela"`
	Notes             string `form:"observaciones"`
}

func NewForm() Form { return Form{Unit: DefaultUnit, Status: StatusStored} }

func FormFromProduct(p entities.HarvestedProduct) Form {
	date := p.HarvestDate
	if len(date) > len(crud.DateLayout) {
		date = date[:len(crud.DateLayout)]
	}
	return Form{
		HarvestDate:       date,
		Quantity:          p.Quantity.String(),
		Unit:              p.Unit,
		Quality:           p.Quality,
		Crop:              p.Crop.String(),
		Labor:             p.Labor.String(),
		Status:            p.Status,
		Lot:               p.Lot.String(),
		WarehouseLocation: p.WarehouseLocation,
		Campaign:          p.Campaign.String(),
		Plot:              p.Plot.String(),
		Notes:             p.Notes,
	}
}

// Set changes one field. Choosing a campaign clears the plot and the other
// way round.
func (f *Form) Set(field, value string) {
	switch field {
	case "fecha_cosecha":
		f.HarvestDate = value
	case "cantidad":
		f.Quantity = value
	case "unidad_medida":
		f.Unit = value
	case "calidad":
		f.Quality = value
	case "cultivo":
		f.Crop = value
	case "labor":
		f.Labor = value
	case "estado":
		f.Status = value
	case "lote":
		f.Lot = value
	case "ubicacion_almacen":
		f.WarehouseLocation = value
	case "campania":
		f.Campaign = value
		if value != "" {
			f.Plot = ""
		}
	case "parcela":
		f.Plot = value
		if value != "" {
			f.Campaign = ""
		}
	case "observaciones":
		f.Notes = value
	}
}

const (
	msgLocationMissing = "Debe especificar al menos una campaña o una parcela"
	msgLocationBoth    = "Solo puede especificar campaña O parcela, no ambas"
	MsgLotTaken        = "El número de lote ya existe"
)

func (f Form) Validate(loc *time.Location) crud.FieldErrors {
	errs := crud.FieldErrors{}

	switch {
	case strings.TrimSpace(f.HarvestDate) == "":
		errs.Add("fecha_cosecha", "La fecha de cosecha es requerida")
	case crud.IsFutureDate(f.HarvestDate, loc):
		errs.Add("fecha_cosecha", "La fecha de cosecha no puede ser en el futuro")
	}
	if v, ok, err := crud.ParseFloat(f.Quantity); err != nil || !ok || v <= 0 {
		errs.Add("cantidad", "La cantidad debe ser mayor a 0")
	}
	if strings.TrimSpace(f.Unit) == "" {
		errs.Add("unidad_medida", "La unidad de medida es requerida")
	}
	if strings.TrimSpace(f.Quality) == "" {
		errs.Add("calidad", "La calidad es requerida")
	}
	if f.Crop == "" {
		errs.Add("cultivo", "El cultivo es requerido")
	}
	if f.Labor == "" {
		errs.Add("labor", "La labor es requerida")
	}
	if v, ok, err := crud.ParseFloat(f.Lot); err != nil || !ok || v <= 0 {
		errs.Add("lote", "El lote debe ser mayor a 0")
	}
	if strings.TrimSpace(f.WarehouseLocation) == "" {
		errs.Add("ubicacion_almacen", "La ubicación en almacén es requerida")
	}
	switch {
	case f.Campaign == "" && f.Plot == "":
		errs.Add("campania", msgLocationMissing)
		errs.Add("parcela", msgLocationMissing)
	case f.Campaign != "" && f.Plot != "":
		errs.Add("campania", msgLocationBoth)
		errs.Add("parcela", msgLocationBoth)
	}
	return errs
}

// Payload converts the form to the request body. Call after Validate.
func (f Form) Payload() (entities.HarvestedProductPayload, error) {
	p := entities.HarvestedProductPayload{
		HarvestDate:       f.HarvestDate,
		Unit:              strings.TrimSpace(f.Unit),
		Quality:           strings.TrimSpace(f.Quality),
		Status:            f.Status,
		WarehouseLocation: strings.TrimSpace(f.WarehouseLocation),
		Notes:             f.Notes,
	}
	var err error
	refs := []struct {
		dst *entities.Ref
		src string
	}{{&p.Crop, f.Crop}, {&p.Labor, f.Labor}, {&p.Campaign, f.Campaign}, {&p.Plot, f.Plot}}
	for _, r := range refs {
		if *r.dst, err = entities.ParseRef(r.src); err != nil {
			return p, err
		}
	}
	if p.Quantity, err = entities.ParseNumber(strings.ReplaceAll(f.Quantity, ",", ".")); err != nil {
		return p, err
	}
	if p.Lot, err = entities.ParseNumber(strings.ReplaceAll(f.Lot, ",", ".")); err != nil {
		return p, err
	}
	return p, nil
}

// ParseSale reads the quantity typed for a sale.
func ParseSale(s string) (float64, error) {
	v, ok, err := crud.ParseFloat(s)
	if err != nil || !ok || v <= 0 {
		return 0, fmt.Errorf("cantidad inválida %q", s)
	}
	return v, nil
}

// Package labor holds the rules of the labor record screens: catalogues,
// filter mapping, form state, local validation and list statistics.
package labor

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
	StatusPlanned    = "PLANIFICADA"
	StatusInProgress = "EN_PROCESO"
	StatusCompleted  = "COMPLETADA"
	StatusCancelled  = "CANCELADA"
)

var Types = []entities.Option{
	{Value: "SIEMBRA", Label: "Siembra"},
	{Value: "RIEGO", Label: "Riego"},
	{Value: "FERTILIZACION", Label: "Fertilización"},
	{Value: "FUMIGACION", Label: "Fumigación"},
	{Value: "COSECHA", Label: "Cosecha"},
	{Value: "PODA", Label: "Poda"},
	{Value: "DESMALEZADO", Label: "Desmalezado"},
	{Value: "MANTENIMIENTO", Label: "Mantenimiento"},
	{Value: "OTRO", Label: "Otro"},
}

var States = []entities.Option{
	{Value: StatusPlanned, Label: "Planificada"},
	{Value: StatusInProgress, Label: "En proceso"},
	{Value: StatusCompleted, Label: "Completada"},
	{Value: StatusCancelled, Label: "Cancelada"},
}

// Labels translates backend field names for error messages.
var Labels = apiclient.Labels{
	"fecha_labor":     "Fecha de labor",
	"labor":           "Tipo de labor",
	"estado":          "Estado",
	"campaña":         "Campaña",
	"parcela":         "Parcela",
	"insumo":          "Insumo",
	"cantidad_insumo": "Cantidad de insumo",
	"descripcion":     "Descripción",
	"observaciones":   "Observaciones",
	"costo_estimado":  "Costo estimado",
	"duracion_horas":  "Duración en horas",
	"responsable":     "Responsable",
}

func FieldLabel(field string) string { return Labels.Label(field) }

var searchFields = map[string]string{
	"fechaDesde":  "fecha_labor_desde",
	"fechaHasta":  "fecha_labor_hasta",
	"tipo":        "labor_tipo",
	"estado":      "estado",
	"campana":     "campaña_id",
	"parcela":     "parcela_id",
	"responsable": "responsable_id",
	"insumo":      "insumo_id",
	"socio":       "socio_id",
}

// BuildSearchParams maps list filters to backend query names, dropping
// empty ones.
func BuildSearchParams(f crud.Filters) url.Values { return crud.BuildParams(f, searchFields) }

func label(opts []entities.Option, v string) string {
	for _, o := range opts {
		if o.Value == v {
			return o.Label
		}
	}
	return strings.ReplaceAll(v, "_", " ")
}

func TypeLabel(v string) string  { return label(Types, v) }
func StateLabel(v string) string { return label(States, v) }

// NextStates lists the transitions offered for a row in status.
func NextStates(status string) []string {
	var out []string
	if status != StatusCompleted {
		out = append(out, StatusCompleted)
	}
	if status != StatusInProgress && status != StatusCompleted {
		out = append(out, StatusInProgress)
	}
	if status != StatusCancelled {
		out = append(out, StatusCancelled)
	}
	return out
}

type Stats struct {
	Total      int
	Planned    int
	InProgress int
	Completed  int
	Cancelled  int
}

func ComputeStats(ls []entities.Labor) Stats {
	s := Stats{Total: len(ls)}
	for _, l := range ls {
		switch l.Status {
		case StatusPlanned:
			s.Planned++
		case StatusInProgress:
			s.InProgress++
		case StatusCompleted:
			s.Completed++
		case StatusCancelled:
			s.Cancelled++
		}
	}
	return s
}

// Form is the edit state of a labor record, keyed by backend field names.
// Foreign keys use "" for no selection.
type Form struct {
	Date          string `form:"fecha_labor"`
	Type          string `form:"labor"`
	Status        string `form:"estado"`
	Description   string `form:"descripcion"`
	Notes         string `form:"observaciones"`
	Campaign      string `form:"campaña"`
	Plot          string `form:"parcela"`
	Input         string `form:"insumo"`
	InputQuantity string `form:"cantidad_insumo"`
	EstimatedCost string `form:"costo_estimado"`
	DurationHours string `form:"duracion_horas"`
	Responsible   string `form:"responsable"`
}

func NewForm(loc *time.Location) Form {
	return Form{Date: crud.Today(loc), Status: StatusPlanned}
}

func FormFromLabor(l entities.Labor) Form {
	date := l.Date
	if len(date) > len(crud.DateLayout) {
		date = date[:len(crud.DateLayout)]
	}
	return Form{
		Date:          date,
		Type:          l.Type,
		Status:        l.Status,
		Description:   l.Description,
		Notes:         l.Notes,
		Campaign:      l.Campaign.String(),
		Plot:          l.Plot.String(),
		Input:         l.Input.String(),
		InputQuantity: l.InputQuantity.String(),
		EstimatedCost: l.EstimatedCost.String(),
		DurationHours: l.DurationHours.String(),
		Responsible:   l.Responsible.String(),
	}
}

// Set changes one field and applies its side effects.
func (f *Form) Set(field, value string) {
	switch field {
	case "fecha_labor":
		f.Date = value
	case "labor":
		f.Type = value
	case "estado":
		f.Status = value
	case "descripcion":
		f.Description = value
	case "observaciones":
		f.Notes = value
	case "campaña":
		f.Campaign = value
	case "parcela":
		f.Plot = value
	case "insumo":
		f.Input = value
	case "cantidad_insumo":
		f.InputQuantity = value
	case "costo_estimado":
		f.EstimatedCost = value
	case "duracion_horas":
		f.DurationHours = value
	case "responsable":
		f.Responsible = value
	}
	f.Normalize()
}

// Normalize drops the input quantity when no input is selected.
func (f *Form) Normalize() {
	if strings.TrimSpace(f.Input) == "" {
		f.InputQuantity = ""
	}
}

const (
	msgLocation = "Debe especificar al menos una campaña o parcela"
	msgNumber   = "Debe ser un número válido"
)

// Validate mirrors the backend rules the form can check locally.
func (f Form) Validate(lk entities.Lookups, loc *time.Location) crud.FieldErrors {
	errs := crud.FieldErrors{}

	switch {
	case strings.TrimSpace(f.Date) == "":
		errs.Add("fecha_labor", "La fecha de labor es requerida")
	case crud.IsFutureDate(f.Date, loc):
		errs.Add("fecha_labor", "La fecha de labor no puede ser en el futuro")
	}
	if f.Type == "" {
		errs.Add("labor", "El tipo de labor es requerido")
	}
	if strings.TrimSpace(f.Description) == "" {
		errs.Add("descripcion", "La descripción es requerida")
	}
	if f.Campaign == "" && f.Plot == "" {
		errs.Add("campaña", msgLocation)
		errs.Add("parcela", msgLocation)
	}

	qty, hasQty, qtyErr := crud.ParseFloat(f.InputQuantity)
	switch {
	case qtyErr != nil:
		errs.Add("cantidad_insumo", msgNumber)
	case f.Input != "" && !hasQty:
		errs.Add("cantidad_insumo", "Debe especificar la cantidad de insumo utilizada")
	case hasQty && qty <= 0:
		errs.Add("cantidad_insumo", "La cantidad debe ser mayor a 0")
	}

	if v, ok, err := crud.ParseFloat(f.EstimatedCost); err != nil {
		errs.Add("costo_estimado", msgNumber)
	} else if ok && v < 0 {
		errs.Add("costo_estimado", "El costo estimado no puede ser negativo")
	}
	if v, ok, err := crud.ParseFloat(f.DurationHours); err != nil {
		errs.Add("duracion_horas", msgNumber)
	} else if ok && v <= 0 {
		errs.Add("duracion_horas", "La duración debe ser mayor a 0")
	}

	if f.Input != "" && hasQty {
		ref, _ := entities.ParseRef(f.Input)
		if in, ok := lk.Input(ref); ok && in.Available.Set && qty > in.Available.V {
			errs.Add("cantidad_insumo", fmt.Sprintf("Stock insuficiente. Disponible: %s %s", in.Available, in.UnitOrDefault()))
		}
	}
	return errs
}

// Payload converts the form to the request body: numbers parsed and empty
// foreign keys sent as null. Call after Validate.
func (f Form) Payload() (entities.LaborPayload, error) {
	p := entities.LaborPayload{
		Date:        f.Date,
		Type:        f.Type,
		Status:      f.Status,
		Description: strings.TrimSpace(f.Description),
		Notes:       f.Notes,
	}
	var err error
	refs := []struct {
		dst *entities.Ref
		src string
	}{{&p.Campaign, f.Campaign}, {&p.Plot, f.Plot}, {&p.Input, f.Input}, {&p.Responsible, f.Responsible}}
	for _, r := range refs {
		if *r.dst, err = entities.ParseRef(r.src); err != nil {
			return p, err
		}
	}
	nums := []struct {
		dst *entities.Number
		src string
	}{{&p.InputQuantity, f.InputQuantity}, {&p.EstimatedCost, f.EstimatedCost}, {&p.DurationHours, f.DurationHours}}
	for _, n := range nums {
		if *n.dst, err = entities.ParseNumber(strings.ReplaceAll(n.src, ",", ".")); err != nil {
			return p, err
		}
	}
	return p, nil
}

// CampaignAdvisory warns when date falls outside the campaign. It never
// blocks submission.
func CampaignAdvisory(date string, c entities.Campaign) string {
	d, ok := crud.ParseDate(date)
	if !ok {
		return ""
	}
	if start, ok := crud.ParseDate(c.StartDate); ok && d.Before(start) {
		return fmt.Sprintf("La fecha no puede ser anterior al inicio de la campaña (%s)", start.Format(crud.DisplayLayout))
	}
	if end, ok := crud.ParseDate(c.EndDate); ok && d.After(end) {
		return fmt.Sprintf("La fecha no puede ser posterior al fin de la campaña (%s)", end.Format(crud.DisplayLayout))
	}
	return ""
}

// Advisory resolves the selected campaign and checks the date against it.
func (f Form) Advisory(lk entities.Lookups) string {
	ref, err := entities.ParseRef(f.Campaign)
	if err != nil || f.Date == "" {
		return ""
	}
	c, ok := lk.Campaign(ref)
	if !ok {
		return ""
	}
	return CampaignAdvisory(f.Date, c)
}

// StockInfo describes the stock of the selected input, or "".
func (f Form) StockInfo(lk entities.Lookups) string {
	ref, err := entities.ParseRef(f.Input)
	if err != nil {
		return ""
	}
	in, ok := lk.Input(ref)
	if !ok || !in.Available.Set {
		return ""
	}
	return fmt.Sprintf("Stock disponible: %s %s", in.Available, in.UnitOrDefault())
}

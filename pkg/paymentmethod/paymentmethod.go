// Package paymentmethod holds the payment method rules: the type catalogue,
// card configuration, form validation, list filters and reordering.
package paymentmethod

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"cooperativa/entities"
	"cooperativa/pkg/apiclient"
	"cooperativa/pkg/crud"
)

const (
	TypeCash     = "EFECTIVO"
	TypeTransfer = "TRANSFERENCIA"
	TypeCredit   = "TARJETA_CREDITO"
	TypeDebit    = "TARJETA_DEBITO"
	TypeCheque   = "CHEQUE"
	TypeDigital  = "DIGITAL"
	TypeOther    = "OTRO"
)

var Types = []entities.Option{
	{Value: TypeCash, Label: "Efectivo"},
	{Value: TypeTransfer, Label: "Transferencia Bancaria"},
	{Value: TypeCredit, Label: "Tarjeta de Crédito"},
	{Value: TypeDebit, Label: "Tarjeta de Débito"},
	{Value: TypeCheque, Label: "Cheque"},
	{Value: TypeDigital, Label: "Pago Digital"},
	{Value: TypeOther, Label: "Otro"},
}

var Labels = apiclient.Labels{
	"nombre":        "Nombre",
	"tipo":          "Tipo",
	"activo":        "Activo",
	"orden":         "Orden",
	"descripcion":   "Descripción",
	"configuracion": "Configuración",
}

func TypeLabel(t string) string {
	for _, o := range Types {
		if o.Value == t {
			return o.Label
		}
	}
	return t
}

// IsCard reports whether t needs a processor and commission.
func IsCard(t string) bool { return t == TypeCredit || t == TypeDebit }

const (
	keyProcessor  = "procesador"
	keyCommission = "comision_porcentaje"
)

var namePattern = regexp.MustCompile(`^[a-zA-ZÀ-ÿ0-9\s\-\.\(\)]+$`)

// Form is the edit state of a payment method. The card settings have their
// own inputs; any other configuration keys travel as a JSON object in Extra.
type Form struct {
	Name        string `form:"nombre"`
	Type        string `form:"tipo"`
	Active      string `form:"activo"`
	Order       string `form:"orden"`
	Description string `form:"descripcion"`
	Processor   string `form:"procesador"`
	Commission  string `form:"comision_porcentaje"`
	Extra       string `form:"configuracion_extra"`
}

func NewForm(order int) Form {
	return Form{Type: TypeCash, Active: "true", Order: strconv.Itoa(order)}
}

func FormFromMethod(m entities.PaymentMethod) Form {
	f := Form{
		Name:        m.Name,
		Type:        m.Type,
		Active:      strconv.FormatBool(m.Active),
		Order:       strconv.Itoa(m.Order),
		Description: m.DescriptionText(),
	}
	extra := map[string]any{}
	for k, v := range m.Config {
		switch k {
		case keyProcessor:
			f.Processor = fmt.Sprint(v)
		case keyCommission:
			f.Commission = fmt.Sprint(v)
		default:
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		b, _ := json.Marshal(extra)
		f.Extra = string(b)
	}
	return f
}

func (f Form) IsActive() bool { return f.Active == "true" || f.Active == "on" }

// Set changes one field. Leaving the card types drops the configuration.
func (f *Form) Set(field, value string) {
	switch field {
	case "nombre":
		f.Name = value
	case "tipo":
		f.Type = value
		if !IsCard(value) {
			f.Processor, f.Commission, f.Extra = "", "", ""
		}
	case "activo":
		f.Active = value
	case "orden":
		f.Order = value
	case "descripcion":
		f.Description = value
	case "procesador":
		f.Processor = value
	case "comision_porcentaje":
		f.Commission = value
	case "configuracion_extra":
		f.Extra = value
	}
}

func (f Form) Validate() crud.FieldErrors {
	errs := crud.FieldErrors{}

	name := strings.TrimSpace(f.Name)
	switch n := len([]rune(name)); {
	case n == 0:
		errs.Add("nombre", "Nombre es requerido")
	case n < 2:
		errs.Add("nombre", "El nombre debe tener al menos 2 caracteres")
	case n > 100:
		errs.Add("nombre", "El nombre no puede exceder los 100 caracteres")
	case !namePattern.MatchString(name):
		errs.Add("nombre", "Nombre solo puede contener letras, números, espacios, guiones, puntos y paréntesis")
	}

	if f.Type == "" {
		errs.Add("tipo", "Tipo es requerido")
	}

	if order, err := strconv.Atoi(strings.TrimSpace(f.Order)); err != nil {
		errs.Add("orden", "El orden debe ser un número entero")
	} else if order < 0 {
		errs.Add("orden", "El orden no puede ser negativo")
	} else if order > 1000 {
		errs.Add("orden", "El orden no puede ser mayor a 1000")
	}

	if IsCard(f.Type) {
		if strings.TrimSpace(f.Processor) == "" {
			errs.Add("configuracion", "Procesador es requerido para métodos de tarjeta")
		}
		c, ok, err := crud.ParseFloat(f.Commission)
		switch {
		case err == nil && !ok:
			errs.Add("configuracion", "Comisión porcentual es requerida para métodos de tarjeta")
		case err != nil || c < 0 || c > 100:
			errs.Add("configuracion", "La comisión debe ser un porcentaje entre 0 y 100")
		}
	}
	if _, err := f.extra(); err != nil {
		errs.Add("configuracion", "La configuración debe ser un JSON válido")
	}
	return errs
}

func (f Form) extra() (map[string]any, error) {
	if strings.TrimSpace(f.Extra) == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(f.Extra), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Payload builds the request body. An empty description is sent as null,
// and so is the configuration when nothing is configured.
func (f Form) Payload() (entities.PaymentMethodPayload, error) {
	order, err := strconv.Atoi(strings.TrimSpace(f.Order))
	if err != nil {
		return entities.PaymentMethodPayload{}, fmt.Errorf("orden: %w", err)
	}
	p := entities.PaymentMethodPayload{
		Name:   strings.TrimSpace(f.Name),
		Type:   f.Type,
		Active: f.IsActive(),
		Order:  order,
	}
	if d := strings.TrimSpace(f.Description); d != "" {
		p.Description = &d
	}
	cfg, err := f.extra()
	if err != nil {
		return p, fmt.Errorf("configuracion: %w", err)
	}
	if IsCard(f.Type) {
		if cfg == nil {
			cfg = map[string]any{}
		}
		cfg[keyProcessor] = strings.TrimSpace(f.Processor)
		if c, ok, _ := crud.ParseFloat(f.Commission); ok {
			cfg[keyCommission] = c
		}
	}
	if len(cfg) > 0 {
		p.Config = cfg
	}
	return p, nil
}

// NextOrder is the order proposed for a new method: one past the highest.
func NextOrder(ms []entities.PaymentMethod) int {
	top := 0
	for _, m := range ms {
		if m.Order > top {
			top = m.Order
		}
	}
	return top + 1
}

// SortByOrder sorts in place by orden, then id.
func SortByOrder(ms []entities.PaymentMethod) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].Order != ms[j].Order {
			return ms[i].Order < ms[j].Order
		}
		return ms[i].ID < ms[j].ID
	})
}

// Matches applies the list search and the tipo and activo filters.
// activo is "activo", "inactivo" or "".
func Matches(m entities.PaymentMethod, search, typ, active string) bool {
	if typ != "" && m.Type != typ {
		return false
	}
	switch active {
	case "activo":
		if !m.Active {
			return false
		}
	case "inactivo":
		if m.Active {
			return false
		}
	}
	return crud.MatchAny(search, m.Name, m.DescriptionText(), TypeLabel(m.Type))
}

type Stats struct {
	Total    int
	Active   int
	Inactive int
	Types    int
}

func ComputeStats(ms []entities.PaymentMethod) Stats {
	s := Stats{Total: len(ms)}
	types := make([]string, 0, len(ms))
	for _, m := range ms {
		if m.Active {
			s.Active++
		} else {
			s.Inactive++
		}
		types = append(types, m.Type)
	}
	s.Types = len(crud.Distinct(types))
	return s
}

const (
	Up   = "up"
	Down = "down"
)

// Updater is the write half of the payment method service used by Move.
type Updater interface {
	Update(ctx context.Context, id int64, p entities.PaymentMethodPayload) (entities.PaymentMethod, error)
}

// Move swaps the orden of the method id with its neighbour in rows, which
// must already be sorted. The two updates are not atomic: when the second
// fails the first stays applied. Moving past either end is a no-op.
func Move(ctx context.Context, u Updater, rows []entities.PaymentMethod, id int64, dir string) (bool, error) {
	idx := -1
	for i, m := range rows {
		if m.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, fmt.Errorf("método de pago %d no encontrado", id)
	}
	target := idx - 1
	if dir == Down {
		target = idx + 1
	}
	if target < 0 || target >= len(rows) {
		return false, nil
	}
	cur, other := rows[idx], rows[target]

	p := cur.Payload()
	p.Order = other.Order
	if _, err := u.Update(ctx, cur.ID, p); err != nil {
		return false, err
	}
	p = other.Payload()
	p.Order = cur.Order
	if _, err := u.Update(ctx, other.ID, p); err != nil {
		return false, err
	}
	return true, nil
}

// ConfigEntry is one configuration key as shown on the detail page.
type ConfigEntry struct {
	Key   string
	Value string
}

// Detail is a payment method with its display-ready configuration.
type Detail struct {
	entities.PaymentMethod
	TypeName string
	Config   []ConfigEntry
}

func DetailOf(m entities.PaymentMethod) Detail {
	d := Detail{PaymentMethod: m, TypeName: m.TypeDisplay}
	if d.TypeName == "" {
		d.TypeName = TypeLabel(m.Type)
	}
	keys := make([]string, 0, len(m.Config))
	for k := range m.Config {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		d.Config = append(d.Config, ConfigEntry{Key: strings.ReplaceAll(k, "_", " "), Value: configValue(k, m.Config[k])})
	}
	return d
}

func configValue(key string, v any) string {
	switch x := v.(type) {
	case bool:
		if x {
			return "Sí"
		}
		return "No"
	case float64:
		s := strconv.FormatFloat(x, 'f', -1, 64)
		if strings.Contains(key, "porcentaje") {
			return s + "%"
		}
		return s
	case nil:
		return "-"
	}
	return fmt.Sprint(v)
}

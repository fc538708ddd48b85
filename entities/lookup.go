package entities

import (
	"strconv"
	"strings"
)

type Campaign struct {
	ID        int64  `json:"id"`
	Name      string `json:"nombre"`
	StartDate string `json:"fecha_inicio"`
	EndDate   string `json:"fecha_fin"`
}

func (c Campaign) Option() Option { return Option{Value: itoa(c.ID), Label: c.Name} }

type Plot struct {
	ID     int64  `json:"id"`
	Name   string `json:"nombre"`
	Status string `json:"estado"`
}

func (p Plot) Option() Option { return Option{Value: itoa(p.ID), Label: p.Name} }

// Input is a stock item ("insumo") consumed by labors.
type Input struct {
	ID        int64  `json:"id"`
	Name      string `json:"nombre"`
	Available Number `json:"cantidad_disponible"`
	Unit      string `json:"unidad_medida"`
}

func (i Input) Option() Option { return Option{Value: itoa(i.ID), Label: i.Name} }

// UnitOrDefault is the unit label used in stock messages.
func (i Input) UnitOrDefault() string {
	if i.Unit == "" {
		return "unidades"
	}
	return i.Unit
}

type Responsible struct {
	ID       int64  `json:"id"`
	FullName string `json:"get_full_name"`
	Username string `json:"username"`
}

func (r Responsible) Option() Option {
	label := strings.TrimSpace(r.FullName)
	if label == "" {
		label = r.Username
	}
	return Option{Value: itoa(r.ID), Label: label}
}

type Crop struct {
	ID      int64  `json:"id"`
	Name    string `json:"nombre"`
	Species string `json:"especie"`
	Variety string `json:"variedad"`
}

func (c Crop) Option() Option {
	label := c.Name
	if label == "" {
		label = strings.TrimSpace(c.Species + " - " + c.Variety)
	}
	return Option{Value: itoa(c.ID), Label: label}
}

// Option labels a labor record for selection in other forms.
func (l Labor) Option() Option {
	label := l.TypeDisplay
	if label == "" {
		label = l.Type
	}
	if l.Description != "" {
		label = strings.TrimSpace(label + " - " + l.Description)
	}
	return Option{Value: itoa(l.ID), Label: label}
}

// Options maps any lookup list to select options.
func Options[T interface{ Option() Option }](items []T) []Option {
	out := make([]Option, 0, len(items))
	for _, it := range items {
		out = append(out, it.Option())
	}
	return out
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

// Lookups bundles the reference lists a form may need. Degraded marks the
// example set standing in for a failed load.
type Lookups struct {
	Campaigns    []Campaign    `json:"campanas"`
	Plots        []Plot        `json:"parcelas"`
	Inputs       []Input       `json:"insumos"`
	Responsibles []Responsible `json:"responsables"`
	Crops        []Crop        `json:"cultivos"`
	Labors       []Labor       `json:"labores"`
	Degraded     bool          `json:"-"`
	Error        string        `json:"-"`
}

func (l Lookups) Campaign(id Ref) (Campaign, bool) {
	for _, c := range l.Campaigns {
		if id.Set && c.ID == id.ID {
			return c, true
		}
	}
	return Campaign{}, false
}

func (l Lookups) Input(id Ref) (Input, bool) {
	for _, in := range l.Inputs {
		if id.Set && in.ID == id.ID {
			return in, true
		}
	}
	return Input{}, false
}

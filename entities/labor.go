package entities

// Labor is an agricultural labor record as served by /api/labores/.
type Labor struct {
	ID              int64  `json:"id"`
	Date            string `json:"fecha_labor"` // YYYY-MM-DD
	Type            string `json:"labor"`       // SIEMBRA|RIEGO|FERTILIZACION|...
	TypeDisplay     string `json:"tipo_labor_display"`
	Status          string `json:"estado"` // PLANIFICADA|EN_PROCESO|COMPLETADA|CANCELADA
	Campaign        Ref    `json:"campaña"`
	CampaignName    string `json:"campaña_nombre"`
	Plot            Ref    `json:"parcela"`
	PlotName        string `json:"parcela_nombre"`
	MemberName      string `json:"socio_nombre"`
	Input           Ref    `json:"insumo"`
	InputName       string `json:"insumo_nombre"`
	InputQuantity   Number `json:"cantidad_insumo"`
	Description     string `json:"descripcion"`
	Notes           string `json:"observaciones"`
	EstimatedCost   Number `json:"costo_estimado"`
	DurationHours   Number `json:"duracion_horas"`
	DurationDisplay string `json:"duracion_display"`
	TotalCost       Number `json:"costo_total"`
	Responsible     Ref    `json:"responsable"`
	ResponsibleName string `json:"responsable_nombre"`
	CanDeductInput  bool   `json:"puede_descontar_insumo"`
	CreatedAt       string `json:"creado_en"`
	UpdatedAt       string `json:"actualizado_en"`
}

// LaborPayload is the create/update body.
type LaborPayload struct {
	Date          string `json:"fecha_labor"`
	Type          string `json:"labor"`
	Status        string `json:"estado"`
	Description   string `json:"descripcion"`
	Notes         string `json:"observaciones"`
	Campaign      Ref    `json:"campaña"`
	Plot          Ref    `json:"parcela"`
	Input         Ref    `json:"insumo"`
	InputQuantity Number `json:"cantidad_insumo"`
	EstimatedCost Number `json:"costo_estimado"`
	DurationHours Number `json:"duracion_horas"`
	Responsible   Ref    `json:"responsable"`
}

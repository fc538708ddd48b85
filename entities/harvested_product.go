package entities

// HarvestedProduct is one inventory lot from /api/productos-cosechados/.
type HarvestedProduct struct {
	ID                int64  `json:"id"`
	HarvestDate       string `json:"fecha_cosecha"`
	Quantity          Number `json:"cantidad"`
	Unit              string `json:"unidad_medida"`
	Quality           string `json:"calidad"`
	Crop              Ref    `json:"cultivo"`
	CropSpecies       string `json:"cultivo_especie"`
	CropVariety       string `json:"cultivo_variedad"`
	Labor             Ref    `json:"labor"`
	LaborName         string `json:"labor_nombre"`
	Status            string `json:"estado"`
	Lot               Number `json:"lote"`
	WarehouseLocation string `json:"ubicacion_almacen"`
	Campaign          Ref    `json:"campania"`
	CampaignName      string `json:"campania_nombre"`
	Plot              Ref    `json:"parcela"`
	PlotName          string `json:"parcela_nombre"`
	MemberName        string `json:"socio_nombre"`
	Notes             string `json:"observaciones"`
	OriginDisplay     string `json:"origen_display"`
	DaysInStorage     int    `json:"dias_en_almacen"`
	NearExpiry        bool   `json:"esta_proximo_vencer"`
	CanSell           bool   `json:"puede_vender"`
	CreatedAt         string `json:"creado_en"`
	UpdatedAt         string `json:"actualizado_en"`
}

// HarvestedProductPayload is the create/update body.
type HarvestedProductPayload struct {
	HarvestDate       string `json:"fecha_cosecha"`
	Quantity          Number `json:"cantidad"`
	Unit              string `json:"unidad_medida"`
	Quality           string `json:"calidad"`
	Crop              Ref    `json:"cultivo"`
	Labor             Ref    `json:"labor"`
	Status            string `json:"estado"`
	Lot               Number `json:"lote"`
	WarehouseLocation string `json:"ubicacion_almacen"`
	Campaign          Ref    `json:"campania"`
	Plot              Ref    `json:"parcela"`
	Notes             string `json:"observaciones"`
}

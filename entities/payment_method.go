package entities

// PaymentMethod as served by /api/payment-methods/.
type PaymentMethod struct {
	ID          int64          `json:"id"`
	Name        string         `json:"nombre"`
	Type        string         `json:"tipo"` // EFECTIVO|TRANSFERENCIA|TARJETA_CREDITO|...
	TypeDisplay string         `json:"tipo_display,omitempty"`
	Active      bool           `json:"activo"`
	Order       int            `json:"orden"`
	Description *string        `json:"descripcion"`
	Config      map[string]any `json:"configuracion"`
	CanDelete   bool           `json:"puede_eliminarse"`
	CreatedAt   string         `json:"creado_en,omitempty"`
	UpdatedAt   string         `json:"actualizado_en,omitempty"`
	CreatedBy   string         `json:"creado_por_nombre,omitempty"`
	UpdatedBy   string         `json:"actualizado_por_nombre,omitempty"`
}

// DescriptionText returns the description or "".
func (p PaymentMethod) DescriptionText() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}

// PaymentMethodPayload is the create/update body.
type PaymentMethodPayload struct {
	Name        string         `json:"nombre"`
	Type        string         `json:"tipo"`
	Active      bool           `json:"activo"`
	Order       int            `json:"orden"`
	Description *string        `json:"descripcion"`
	Config      map[string]any `json:"configuracion"`
}

// Payload copies the editable fields, used when only some of them change.
func (p PaymentMethod) Payload() PaymentMethodPayload {
	return PaymentMethodPayload{
		Name:        p.Name,
		Type:        p.Type,
		Active:      p.Active,
		Order:       p.Order,
		Description: p.Description,
		Config:      p.Config,
	}
}

package service

import (
	"context"
	"net/url"

	"cooperativa/entities"
	"cooperativa/pkg/crud"
)

// OrderItem is one entry of a bulk reorder request.
type OrderItem struct {
	ID    int64 `json:"id"`
	Order int   `json:"orden"`
}

// PaymentMethodService maps one method to each /api/payment-methods/ endpoint.
type PaymentMethodService interface {
	List(ctx context.Context, params url.Values) (crud.Page[entities.PaymentMethod], error)
	Get(ctx context.Context, id int64) (entities.PaymentMethod, error)
	Create(ctx context.Context, p entities.PaymentMethodPayload) (entities.PaymentMethod, error)
	Update(ctx context.Context, id int64, p entities.PaymentMethodPayload) (entities.PaymentMethod, error)
	PartialUpdate(ctx context.Context, id int64, fields map[string]any) (entities.PaymentMethod, error)
	Delete(ctx context.Context, id int64) error

	ToggleActivation(ctx context.Context, id int64, active bool) error
	Active(ctx context.Context) ([]entities.PaymentMethod, error)
	Dropdown(ctx context.Context) ([]entities.Option, error)
	Reorder(ctx context.Context, items []OrderItem) error
	Stats(ctx context.Context) (map[string]any, error)
	SearchAdvanced(ctx context.Context, params url.Values) (crud.Page[entities.PaymentMethod], error)
	ValidateDeletion(ctx context.Context, id int64) (map[string]any, error)
	ByType(ctx context.Context, typ string) ([]entities.PaymentMethod, error)
}

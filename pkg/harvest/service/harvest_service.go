package service

import (
	"context"
	"net/url"

	"cooperativa/entities"
	"cooperativa/pkg/crud"
)

// HarvestService maps one method to each /api/productos-cosechados/ endpoint.
type HarvestService interface {
	List(ctx context.Context, params url.Values) (crud.Page[entities.HarvestedProduct], error)
	Get(ctx context.Context, id int64) (entities.HarvestedProduct, error)
	Create(ctx context.Context, p entities.HarvestedProductPayload) (entities.HarvestedProduct, error)
	Update(ctx context.Context, id int64, p entities.HarvestedProductPayload) (entities.HarvestedProduct, error)
	Delete(ctx context.Context, id int64) error

	Sell(ctx context.Context, id int64, quantity float64, notes string) error
	ChangeStatus(ctx context.Context, id int64, status, notes string) error

	Statuses(ctx context.Context) ([]entities.Option, error)
	NearExpiry(ctx context.Context, days int) ([]entities.HarvestedProduct, error)
	Sellable(ctx context.Context) ([]entities.HarvestedProduct, error)
	InventoryReport(ctx context.Context) (map[string]any, error)
	// LotExists reports whether the lot number is already registered.
	LotExists(ctx context.Context, lot string) (bool, error)

	QuickCreate(ctx context.Context, p entities.HarvestedProductPayload) (entities.HarvestedProduct, error)
	SearchAdvanced(ctx context.Context, params url.Values) (crud.Page[entities.HarvestedProduct], error)
	PeriodReport(ctx context.Context, from, to string) (map[string]any, error)
}

package service

import (
	"context"
	"net/url"

	"cooperativa/entities"
	"cooperativa/pkg/crud"
)

// LaborService maps one method to each /api/labores/ endpoint.
type LaborService interface {
	List(ctx context.Context, params url.Values) (crud.Page[entities.Labor], error)
	Get(ctx context.Context, id int64) (entities.Labor, error)
	Create(ctx context.Context, p entities.LaborPayload) (entities.Labor, error)
	Update(ctx context.Context, id int64, p entities.LaborPayload) (entities.Labor, error)
	Delete(ctx context.Context, id int64) error

	ChangeState(ctx context.Context, id int64, state, notes string) error
	UpdateInput(ctx context.Context, id, inputID int64, quantity float64) error
	QuickCreate(ctx context.Context, p entities.LaborPayload) (entities.Labor, error)
	SearchAdvanced(ctx context.Context, params url.Values) (crud.Page[entities.Labor], error)

	Types(ctx context.Context) ([]entities.Option, error)
	States(ctx context.Context) ([]entities.Option, error)
	WithInputs(ctx context.Context) ([]entities.Labor, error)

	PeriodReport(ctx context.Context, from, to string) (map[string]any, error)
	ValidateCampaignDate(ctx context.Context, campaignID int64, date string) (map[string]any, error)
}

package service

import (
	"context"

	"cooperativa/entities"
)

// LookupService loads the reference lists shown as form options.
type LookupService interface {
	// ForLabor loads campaigns, plots, inputs and responsibles.
	ForLabor(ctx context.Context) (entities.Lookups, error)
	// ForHarvest loads crops, labor records, campaigns and plots.
	ForHarvest(ctx context.Context) (entities.Lookups, error)
}

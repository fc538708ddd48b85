package serviceImp

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cooperativa/entities"
	"cooperativa/pkg/apiclient"
	"cooperativa/pkg/crud"
	"cooperativa/pkg/fallback"
	"cooperativa/pkg/lookup/service"
)

const (
	pathCampaigns    = "/api/campanas/"
	pathPlots        = "/api/parcelas/"
	pathInputs       = "/api/insumos/"
	pathResponsibles = "/api/usuarios/"
	pathCrops        = "/api/cultivos/"
	pathLabors       = "/api/labores/"
)

type lookupSvc struct {
	api         *apiclient.Client
	log         *zap.Logger
	useFallback bool
}

// New returns the lookup service. With useFallback, a failed load yields the
// example lists flagged as degraded instead of an error.
func New(api *apiclient.Client, log *zap.Logger, useFallback bool) service.LookupService {
	return &lookupSvc{api: api, log: log.Named("lookupService"), useFallback: useFallback}
}

func (s *lookupSvc) ForLabor(ctx context.Context) (entities.Lookups, error) {
	var out entities.Lookups
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return fetch(gctx, s.api, pathCampaigns, &out.Campaigns) })
	g.Go(func() error { return fetch(gctx, s.api, pathPlots, &out.Plots) })
	g.Go(func() error { return fetch(gctx, s.api, pathInputs, &out.Inputs) })
	g.Go(func() error { return fetch(gctx, s.api, pathResponsibles, &out.Responsibles) })
	if err := g.Wait(); err != nil {
		return s.degrade(err, func(ex entities.Lookups) entities.Lookups {
			return entities.Lookups{Campaigns: ex.Campaigns[:2], Plots: ex.Plots, Inputs: ex.Inputs, Responsibles: ex.Responsibles}
		})
	}
	return out, nil
}

func (s *lookupSvc) ForHarvest(ctx context.Context) (entities.Lookups, error) {
	var out entities.Lookups
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return fetch(gctx, s.api, pathCrops, &out.Crops) })
	g.Go(func() error { return fetch(gctx, s.api, pathLabors, &out.Labors) })
	g.Go(func() error { return fetch(gctx, s.api, pathCampaigns, &out.Campaigns) })
	g.Go(func() error { return fetch(gctx, s.api, pathPlots, &out.Plots) })
	if err := g.Wait(); err != nil {
		return s.degrade(err, func(ex entities.Lookups) entities.Lookups {
			return entities.Lookups{Crops: ex.Crops, Labors: ex.Labors, Campaigns: ex.Campaigns[2:], Plots: ex.Plots}
		})
	}
	return out, nil
}

func (s *lookupSvc) degrade(err error, pick func(entities.Lookups) entities.Lookups) (entities.Lookups, error) {
	s.log.Error("loading lookups", zap.Error(err))
	if !s.useFallback {
		return entities.Lookups{Error: apiclient.Message(err)}, err
	}
	out := pick(fallback.ExampleLookups())
	out.Degraded = true
	out.Error = apiclient.Message(err)
	return out, nil
}

func fetch[T any](ctx context.Context, api *apiclient.Client, path string, out *[]T) error {
	var page crud.Page[T]
	if err := api.Get(ctx, path, nil, &page); err != nil {
		return err
	}
	*out = page.Results
	return nil
}

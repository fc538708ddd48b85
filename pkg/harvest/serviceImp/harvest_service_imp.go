package serviceImp

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"cooperativa/entities"
	"cooperativa/pkg/apiclient"
	"cooperativa/pkg/crud"
	"cooperativa/pkg/harvest/service"
)

const base = "/api/productos-cosechados/"

type harvestSvc struct {
	api *apiclient.Client
	log *zap.Logger
}

// New expects the client configured with the product timeout.
func New(api *apiclient.Client, log *zap.Logger) service.HarvestService {
	return &harvestSvc{api: api, log: log.Named("harvestService")}
}

func item(id int64) string { return fmt.Sprintf("%s%d/", base, id) }

func (s *harvestSvc) fail(op string, err error) error {
	s.log.Error(op, zap.Error(err))
	return err
}

func (s *harvestSvc) List(ctx context.Context, params url.Values) (crud.Page[entities.HarvestedProduct], error) {
	var out crud.Page[entities.HarvestedProduct]
	if err := s.api.Get(ctx, base, params, &out); err != nil {
		return out, s.fail("listing harvested products", err)
	}
	return out, nil
}

func (s *harvestSvc) Get(ctx context.Context, id int64) (entities.HarvestedProduct, error) {
	var out entities.HarvestedProduct
	if err := s.api.Get(ctx, item(id), nil, &out); err != nil {
		return out, s.fail("getting harvested product", err)
	}
	return out, nil
}

func (s *harvestSvc) Create(ctx context.Context, p entities.HarvestedProductPayload) (entities.HarvestedProduct, error) {
	var out entities.HarvestedProduct
	if err := s.api.Post(ctx, base, p, &out); err != nil {
		return out, s.fail("creating harvested product", err)
	}
	return out, nil
}

func (s *harvestSvc) Update(ctx context.Context, id int64, p entities.HarvestedProductPayload) (entities.HarvestedProduct, error) {
	var out entities.HarvestedProduct
	if err := s.api.Put(ctx, item(id), p, &out); err != nil {
		return out, s.fail("updating harvested product", err)
	}
	return out, nil
}

func (s *harvestSvc) Delete(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, item(id), nil); err != nil {
		return s.fail("deleting harvested product", err)
	}
	return nil
}

func (s *harvestSvc) Sell(ctx context.Context, id int64, quantity float64, notes string) error {
	body := map[string]any{"cantidad_vendida": quantity, "observaciones": notes}
	if err := s.api.Post(ctx, item(id)+"vender_producto/", body, nil); err != nil {
		return s.fail("selling harvested product", err)
	}
	return nil
}

func (s *harvestSvc) ChangeStatus(ctx context.Context, id int64, status, notes string) error {
	body := map[string]string{"nuevo_estado": status, "observaciones": notes}
	if err := s.api.Post(ctx, item(id)+"cambiar_estado/", body, nil); err != nil {
		return s.fail("changing harvested product status", err)
	}
	return nil
}

func (s *harvestSvc) Statuses(ctx context.Context) ([]entities.Option, error) {
	var out crud.Page[entities.Option]
	if err := s.api.Get(ctx, base+"estados_disponibles/", nil, &out); err != nil {
		return nil, s.fail("listing harvested product statuses", err)
	}
	return out.Results, nil
}

func (s *harvestSvc) NearExpiry(ctx context.Context, days int) ([]entities.HarvestedProduct, error) {
	var out crud.Page[entities.HarvestedProduct]
	params := url.Values{"dias_umbral": {strconv.Itoa(days)}}
	if err := s.api.Get(ctx, base+"productos_por_vencer/", params, &out); err != nil {
		return nil, s.fail("listing products near expiry", err)
	}
	return out.Results, nil
}

func (s *harvestSvc) Sellable(ctx context.Context) ([]entities.HarvestedProduct, error) {
	var out crud.Page[entities.HarvestedProduct]
	if err := s.api.Get(ctx, base+"productos_vendibles/", nil, &out); err != nil {
		return nil, s.fail("listing sellable products", err)
	}
	return out.Results, nil
}

func (s *harvestSvc) InventoryReport(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := s.api.Get(ctx, base+"reporte_inventario/", nil, &out); err != nil {
		return nil, s.fail("inventory report", err)
	}
	return out, nil
}

func (s *harvestSvc) LotExists(ctx context.Context, lot string) (bool, error) {
	var out struct {
		Exists bool `json:"existe"`
	}
	if err := s.api.Get(ctx, base+"validar_lote/", url.Values{"lote": {lot}}, &out); err != nil {
		return false, s.fail("validating lot", err)
	}
	return out.Exists, nil
}

func (s *harvestSvc) QuickCreate(ctx context.Context, p entities.HarvestedProductPayload) (entities.HarvestedProduct, error) {
	var out entities.HarvestedProduct
	if err := s.api.Post(ctx, base+"crear-rapido/", p, &out); err != nil {
		return out, s.fail("quick-creating harvested product", err)
	}
	return out, nil
}

func (s *harvestSvc) SearchAdvanced(ctx context.Context, params url.Values) (crud.Page[entities.HarvestedProduct], error) {
	var out crud.Page[entities.HarvestedProduct]
	if err := s.api.Get(ctx, base+"buscar-avanzado/", params, &out); err != nil {
		return out, s.fail("advanced harvested product search", err)
	}
	return out, nil
}

func (s *harvestSvc) PeriodReport(ctx context.Context, from, to string) (map[string]any, error) {
	params := url.Values{"fecha_desde": {from}, "fecha_hasta": {to}}
	var out map[string]any
	if err := s.api.Get(ctx, base+"reporte-por-periodo/", params, &out); err != nil {
		return nil, s.fail("harvest period report", err)
	}
	return out, nil
}

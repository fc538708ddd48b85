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
	"cooperativa/pkg/labor/service"
)

const base = "/api/labores/"

type laborSvc struct {
	api *apiclient.Client
	log *zap.Logger
}

func New(api *apiclient.Client, log *zap.Logger) service.LaborService {
	return &laborSvc{api: api, log: log.Named("laborService")}
}

func item(id int64) string { return fmt.Sprintf("%s%d/", base, id) }

func (s *laborSvc) fail(op string, err error) error {
	s.log.Error(op, zap.Error(err))
	return err
}

func (s *laborSvc) List(ctx context.Context, params url.Values) (crud.Page[entities.Labor], error) {
	var out crud.Page[entities.Labor]
	if err := s.api.Get(ctx, base, params, &out); err != nil {
		return out, s.fail("listing labors", err)
	}
	return out, nil
}

func (s *laborSvc) Get(ctx context.Context, id int64) (entities.Labor, error) {
	var out entities.Labor
	if err := s.api.Get(ctx, item(id), nil, &out); err != nil {
		return out, s.fail("getting labor", err)
	}
	return out, nil
}

func (s *laborSvc) Create(ctx context.Context, p entities.LaborPayload) (entities.Labor, error) {
	var out entities.Labor
	if err := s.api.Post(ctx, base, p, &out); err != nil {
		return out, s.fail("creating labor", err)
	}
	return out, nil
}

func (s *laborSvc) Update(ctx context.Context, id int64, p entities.LaborPayload) (entities.Labor, error) {
	var out entities.Labor
	if err := s.api.Put(ctx, item(id), p, &out); err != nil {
		return out, s.fail("updating labor", err)
	}
	return out, nil
}

func (s *laborSvc) Delete(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, item(id), nil); err != nil {
		return s.fail("deleting labor", err)
	}
	return nil
}

func (s *laborSvc) ChangeState(ctx context.Context, id int64, state, notes string) error {
	body := map[string]string{"estado": state, "observaciones": notes}
	if err := s.api.Post(ctx, item(id)+"cambiar_estado/", body, nil); err != nil {
		return s.fail("changing labor state", err)
	}
	return nil
}

func (s *laborSvc) UpdateInput(ctx context.Context, id, inputID int64, quantity float64) error {
	body := map[string]any{"insumo_id": inputID, "cantidad_insumo": quantity}
	if err := s.api.Post(ctx, item(id)+"actualizar_insumo/", body, nil); err != nil {
		return s.fail("updating labor input", err)
	}
	return nil
}

func (s *laborSvc) QuickCreate(ctx context.Context, p entities.LaborPayload) (entities.Labor, error) {
	var out entities.Labor
	if err := s.api.Post(ctx, base+"crear-rapida/", p, &out); err != nil {
		return out, s.fail("quick-creating labor", err)
	}
	return out, nil
}

func (s *laborSvc) SearchAdvanced(ctx context.Context, params url.Values) (crud.Page[entities.Labor], error) {
	var out crud.Page[entities.Labor]
	if err := s.api.Get(ctx, base+"buscar-avanzado/", params, &out); err != nil {
		return out, s.fail("advanced labor search", err)
	}
	return out, nil
}

func (s *laborSvc) Types(ctx context.Context) ([]entities.Option, error) {
	var out []entities.Option
	if err := s.api.Get(ctx, base+"tipos_labor/", nil, &out); err != nil {
		return nil, s.fail("listing labor types", err)
	}
	return out, nil
}

func (s *laborSvc) States(ctx context.Context) ([]entities.Option, error) {
	var out []entities.Option
	if err := s.api.Get(ctx, base+"estados_labor/", nil, &out); err != nil {
		return nil, s.fail("listing labor states", err)
	}
	return out, nil
}

func (s *laborSvc) WithInputs(ctx context.Context) ([]entities.Labor, error) {
	var out crud.Page[entities.Labor]
	if err := s.api.Get(ctx, base+"labores_con_insumos/", nil, &out); err != nil {
		return nil, s.fail("listing labors with inputs", err)
	}
	return out.Results, nil
}

func (s *laborSvc) PeriodReport(ctx context.Context, from, to string) (map[string]any, error) {
	params := url.Values{"fecha_desde": {from}, "fecha_hasta": {to}}
	var out map[string]any
	if err := s.api.Get(ctx, base+"reporte_labores_por_periodo/", params, &out); err != nil {
		return nil, s.fail("labor period report", err)
	}
	return out, nil
}

func (s *laborSvc) ValidateCampaignDate(ctx context.Context, campaignID int64, date string) (map[string]any, error) {
	params := url.Values{"campaña_id": {strconv.FormatInt(campaignID, 10)}, "fecha": {date}}
	var out map[string]any
	if err := s.api.Get(ctx, base+"validar_fecha_campaña/", params, &out); err != nil {
		return nil, s.fail("validating campaign date", err)
	}
	return out, nil
}

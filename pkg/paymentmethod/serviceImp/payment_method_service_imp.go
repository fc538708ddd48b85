package serviceImp

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"cooperativa/entities"
	"cooperativa/pkg/apiclient"
	"cooperativa/pkg/crud"
	"cooperativa/pkg/paymentmethod/service"
)

const base = "/api/payment-methods/"

type paymentMethodSvc struct {
	api *apiclient.Client
	log *zap.Logger
}

func New(api *apiclient.Client, log *zap.Logger) service.PaymentMethodService {
	return &paymentMethodSvc{api: api, log: log.Named("paymentMethodService")}
}

func item(id int64) string { return fmt.Sprintf("%s%d/", base, id) }

func (s *paymentMethodSvc) fail(op string, err error) error {
	s.log.Error(op, zap.Error(err))
	return err
}

func (s *paymentMethodSvc) List(ctx context.Context, params url.Values) (crud.Page[entities.PaymentMethod], error) {
	var out crud.Page[entities.PaymentMethod]
	if err := s.api.Get(ctx, base, params, &out); err != nil {
		return out, s.fail("listing payment methods", err)
	}
	return out, nil
}

func (s *paymentMethodSvc) Get(ctx context.Context, id int64) (entities.PaymentMethod, error) {
	var out entities.PaymentMethod
	if err := s.api.Get(ctx, item(id), nil, &out); err != nil {
		return out, s.fail("getting payment method", err)
	}
	return out, nil
}

func (s *paymentMethodSvc) Create(ctx context.Context, p entities.PaymentMethodPayload) (entities.PaymentMethod, error) {
	var out entities.PaymentMethod
	if err := s.api.Post(ctx, base, p, &out); err != nil {
		return out, s.fail("creating payment method", err)
	}
	return out, nil
}

func (s *paymentMethodSvc) Update(ctx context.Context, id int64, p entities.PaymentMethodPayload) (entities.PaymentMethod, error) {
	var out entities.PaymentMethod
	if err := s.api.Put(ctx, item(id), p, &out); err != nil {
		return out, s.fail("updating payment method", err)
	}
	return out, nil
}

func (s *paymentMethodSvc) PartialUpdate(ctx context.Context, id int64, fields map[string]any) (entities.PaymentMethod, error) {
	var out entities.PaymentMethod
	if err := s.api.Patch(ctx, item(id), fields, &out); err != nil {
		return out, s.fail("patching payment method", err)
	}
	return out, nil
}

func (s *paymentMethodSvc) Delete(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, item(id), nil); err != nil {
		return s.fail("deleting payment method", err)
	}
	return nil
}

func (s *paymentMethodSvc) ToggleActivation(ctx context.Context, id int64, active bool) error {
	if err := s.api.Patch(ctx, item(id)+"activar-desactivar/", map[string]bool{"activo": active}, nil); err != nil {
		return s.fail("toggling payment method", err)
	}
	return nil
}

func (s *paymentMethodSvc) Active(ctx context.Context) ([]entities.PaymentMethod, error) {
	var out crud.Page[entities.PaymentMethod]
	if err := s.api.Get(ctx, base+"activos/", nil, &out); err != nil {
		return nil, s.fail("listing active payment methods", err)
	}
	return out.Results, nil
}

func (s *paymentMethodSvc) Dropdown(ctx context.Context) ([]entities.Option, error) {
	var out crud.Page[entities.Option]
	if err := s.api.Get(ctx, base+"dropdown/", nil, &out); err != nil {
		return nil, s.fail("payment method dropdown", err)
	}
	return out.Results, nil
}

func (s *paymentMethodSvc) Reorder(ctx context.Context, items []service.OrderItem) error {
	body := map[string][]service.OrderItem{"metodos": items}
	if err := s.api.Post(ctx, base+"reordenar/", body, nil); err != nil {
		return s.fail("reordering payment methods", err)
	}
	return nil
}

func (s *paymentMethodSvc) Stats(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := s.api.Get(ctx, base+"estadisticas/", nil, &out); err != nil {
		return nil, s.fail("payment method stats", err)
	}
	return out, nil
}

func (s *paymentMethodSvc) SearchAdvanced(ctx context.Context, params url.Values) (crud.Page[entities.PaymentMethod], error) {
	var out crud.Page[entities.PaymentMethod]
	if err := s.api.Get(ctx, base+"buscar-avanzado/", params, &out); err != nil {
		return out, s.fail("advanced payment method search", err)
	}
	return out, nil
}

func (s *paymentMethodSvc) ValidateDeletion(ctx context.Context, id int64) (map[string]any, error) {
	var out map[string]any
	if err := s.api.Get(ctx, item(id)+"validar-eliminacion/", nil, &out); err != nil {
		return nil, s.fail("validating payment method deletion", err)
	}
	return out, nil
}

func (s *paymentMethodSvc) ByType(ctx context.Context, typ string) ([]entities.PaymentMethod, error) {
	var out crud.Page[entities.PaymentMethod]
	if err := s.api.Get(ctx, base, url.Values{"tipo": {typ}}, &out); err != nil {
		return nil, s.fail("listing payment methods by type", err)
	}
	return out.Results, nil
}

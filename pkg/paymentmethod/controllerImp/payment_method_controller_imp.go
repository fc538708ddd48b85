package controllerImp

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cooperativa/entities"
	"cooperativa/pkg/apiclient"
	"cooperativa/pkg/crud"
	"cooperativa/pkg/fallback"
	"cooperativa/pkg/paymentmethod"
	"cooperativa/pkg/paymentmethod/controller"
	"cooperativa/pkg/paymentmethod/service"
	"cooperativa/pkg/web"
)

const (
	listPath = "/metodos-pago"
	section  = "metodos-pago"
)

type Options struct {
	Fallback bool
}

type paymentMethodCtrl struct {
	svc  service.PaymentMethodService
	log  *zap.Logger
	opts Options
}

func New(svc service.PaymentMethodService, log *zap.Logger, opts Options) controller.PaymentMethodController {
	return &paymentMethodCtrl{svc: svc, log: log.Named("paymentMethodController"), opts: opts}
}

type listView struct {
	Items   []entities.PaymentMethod
	Stats   paymentmethod.Stats
	Search  string
	Type    string
	Active  string
	Types   []string
	Shown   int
	FirstID int64
	LastID  int64
}

func (h *paymentMethodCtrl) List(c echo.Context) error {
	var fb func() []entities.PaymentMethod
	if h.opts.Fallback {
		fb = fallback.PaymentMethods
	}
	st := crud.LoadList(c.Request().Context(), func(ctx context.Context) (crud.Page[entities.PaymentMethod], error) {
		return h.svc.List(ctx, nil)
	}, fb)
	paymentmethod.SortByOrder(st.Items)

	search := strings.TrimSpace(c.QueryParam("search"))
	typ, active := c.QueryParam("tipo"), c.QueryParam("activo")
	rows := crud.Filter(st.Items, func(m entities.PaymentMethod) bool {
		return paymentmethod.Matches(m, search, typ, active)
	})

	types := make([]string, 0, len(st.Items))
	for _, m := range st.Items {
		types = append(types, m.Type)
	}
	view := listView{
		Items:  rows,
		Stats:  paymentmethod.ComputeStats(st.Items),
		Search: search,
		Type:   typ,
		Active: active,
		Types:  crud.Distinct(types),
		Shown:  len(rows),
	}
	if len(st.Items) > 0 {
		view.FirstID, view.LastID = st.Items[0].ID, st.Items[len(st.Items)-1].ID
	}
	return web.Render(c, http.StatusOK, "payment_method_list", web.Page{
		Title:    "Métodos de pago",
		Section:  section,
		Error:    st.Error,
		Degraded: st.Degraded,
		Data:     view,
	})
}

type detailView struct {
	Method paymentmethod.Detail
	Tab    string
}

var tabs = map[string]bool{"informacion": true, "configuracion": true, "auditoria": true}

func (h *paymentMethodCtrl) Detail(c echo.Context) error {
	id, err := crud.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "método de pago no encontrado")
	}
	p := web.Page{Title: "Detalle del método de pago", Section: section}
	m, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		p.Error = "Error al cargar los detalles del método de pago: " + apiclient.Message(err)
		if h.opts.Fallback {
			m = fallback.PaymentMethod(id)
			p.Degraded = true
		} else {
			m = entities.PaymentMethod{ID: id}
		}
	}
	tab := c.QueryParam("tab")
	if !tabs[tab] {
		tab = "informacion"
	}
	p.Data = detailView{Method: paymentmethod.DetailOf(m), Tab: tab}
	return web.Render(c, http.StatusOK, "payment_method_detail", p)
}

type formView struct {
	ID     int64
	Action string
	Form   paymentmethod.Form
	Errors crud.FieldErrors
	Types  []entities.Option
	IsCard bool
}

func (h *paymentMethodCtrl) renderForm(c echo.Context, status int, id int64, f paymentmethod.Form, errs crud.FieldErrors, msg string) error {
	title, action := "Nuevo método de pago", listPath+"/nuevo"
	if id > 0 {
		title, action = "Editar método de pago", fmt.Sprintf("%s/%d/editar", listPath, id)
	}
	if errs == nil {
		errs = crud.FieldErrors{}
	}
	return web.Render(c, status, "payment_method_form", web.Page{
		Title:   title,
		Section: section,
		Error:   msg,
		Data: formView{
			ID:     id,
			Action: action,
			Form:   f,
			Errors: errs,
			Types:  paymentmethod.Types,
			IsCard: paymentmethod.IsCard(f.Type),
		},
	})
}

// New proposes the next free order; 1 when the list cannot be loaded.
func (h *paymentMethodCtrl) New(c echo.Context) error {
	order := 1
	if page, err := h.svc.List(c.Request().Context(), nil); err == nil {
		order = paymentmethod.NextOrder(page.Results)
	}
	return h.renderForm(c, http.StatusOK, 0, paymentmethod.NewForm(order), nil, "")
}

func (h *paymentMethodCtrl) Edit(c echo.Context) error {
	id, err := crud.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "método de pago no encontrado")
	}
	m, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return web.RedirectFlash(c, listPath, "Error al cargar los datos del método de pago: "+apiclient.Message(err), web.FlashError)
	}
	return h.renderForm(c, http.StatusOK, id, paymentmethod.FormFromMethod(m), nil, "")
}

func (h *paymentMethodCtrl) Create(c echo.Context) error { return h.save(c, 0) }

func (h *paymentMethodCtrl) Update(c echo.Context) error {
	id, err := crud.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "método de pago no encontrado")
	}
	return h.save(c, id)
}

func (h *paymentMethodCtrl) save(c echo.Context, id int64) error {
	var f paymentmethod.Form
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "formulario inválido")
	}
	if c.FormValue("_action") == crud.ActionRefresh {
		changed := c.FormValue("_changed")
		f.Set(changed, c.FormValue(changed))
		form, _ := c.FormParams()
		return h.renderForm(c, http.StatusOK, id, f, crud.CarriedErrors(form, changed), "")
	}

	errs := f.Validate()
	if errs.Any() {
		return h.renderForm(c, http.StatusUnprocessableEntity, id, f, errs, "")
	}
	payload, err := f.Payload()
	if err != nil {
		return h.renderForm(c, http.StatusUnprocessableEntity, id, f, errs, err.Error())
	}

	ctx := c.Request().Context()
	verb, done := "crear", "creado"
	if id > 0 {
		verb, done = "actualizar", "actualizado"
		_, err = h.svc.Update(ctx, id, payload)
	} else {
		_, err = h.svc.Create(ctx, payload)
	}
	if err != nil {
		if apiErr, ok := apiclient.AsError(err); ok {
			errs.Merge(apiErr.Fields)
		}
		msg := fmt.Sprintf("Error al %s el método de pago: %s", verb, apiclient.Message(err))
		return h.renderForm(c, http.StatusUnprocessableEntity, id, f, errs, msg)
	}
	return web.RedirectFlash(c, listPath, fmt.Sprintf("Método de pago %s exitosamente", done), web.FlashSuccess)
}

// Toggle sets activo to the submitted value.
func (h *paymentMethodCtrl) Toggle(c echo.Context) error {
	back := web.LocalPath(c.FormValue("_back"), listPath)
	id, err := crud.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "método de pago no encontrado")
	}
	active, err := strconv.ParseBool(c.FormValue("activo"))
	if err != nil {
		return web.RedirectFlash(c, back, "Estado inválido", web.FlashError)
	}
	verb, done := "desactivar", "desactivado"
	if active {
		verb, done = "activar", "activado"
	}
	if err := h.svc.ToggleActivation(c.Request().Context(), id, active); err != nil {
		return web.RedirectFlash(c, back, fmt.Sprintf("Error al %s método de pago: %s", verb, apiclient.Message(err)), web.FlashError)
	}
	return web.RedirectFlash(c, back, "Método de pago "+done, web.FlashSuccess)
}

func (h *paymentMethodCtrl) Delete(c echo.Context) error {
	id, err := crud.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "método de pago no encontrado")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		back := web.LocalPath(c.FormValue("_back"), listPath)
		return web.RedirectFlash(c, back, "Error al eliminar método de pago: "+apiclient.Message(err), web.FlashError)
	}
	return web.RedirectFlash(c, listPath, "Método de pago eliminado exitosamente", web.FlashSuccess)
}

// Move swaps the method with its neighbour in the current order.
func (h *paymentMethodCtrl) Move(c echo.Context) error {
	id, err := crud.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "método de pago no encontrado")
	}
	dir := c.FormValue("dir")
	if dir != paymentmethod.Up && dir != paymentmethod.Down {
		return web.RedirectFlash(c, listPath, "Dirección inválida", web.FlashError)
	}
	ctx := c.Request().Context()
	page, err := h.svc.List(ctx, nil)
	if err != nil {
		return web.RedirectFlash(c, listPath, "Error al reordenar método de pago: "+apiclient.Message(err), web.FlashError)
	}
	rows := page.Results
	paymentmethod.SortByOrder(rows)
	moved, err := paymentmethod.Move(ctx, h.svc, rows, id, dir)
	if err != nil {
		return web.RedirectFlash(c, listPath, "Error al reordenar método de pago: "+apiclient.Message(err), web.FlashError)
	}
	if !moved {
		return web.Redirect(c, listPath)
	}
	return web.RedirectFlash(c, listPath, "Orden actualizado", web.FlashSuccess)
}

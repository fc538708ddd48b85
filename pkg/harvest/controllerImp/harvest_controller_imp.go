package controllerImp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cooperativa/entities"
	"cooperativa/pkg/apiclient"
	"cooperativa/pkg/crud"
	"cooperativa/pkg/fallback"
	"cooperativa/pkg/harvest"
	"cooperativa/pkg/harvest/controller"
	"cooperativa/pkg/harvest/service"
	formlookup "cooperativa/pkg/lookup"
	lookup "cooperativa/pkg/lookup/service"
	"cooperativa/pkg/report"
	"cooperativa/pkg/web"
)

const (
	listPath = "/productos-cosechados"
	section  = "productos"
)

var pageSizes = []int{10, 25, 50, 100}

type Options struct {
	Location *time.Location
	PageSize int
	Fallback bool
}

type harvestCtrl struct {
	svc     service.HarvestService
	lookups lookup.LookupService
	log     *zap.Logger
	opts    Options
}

func New(svc service.HarvestService, lookups lookup.LookupService, log *zap.Logger, opts Options) controller.HarvestController {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 25
	}
	return &harvestCtrl{svc: svc, lookups: lookups, log: log.Named("harvestController"), opts: opts}
}

// statuses prefers the backend catalogue over the built-in one.
func (h *harvestCtrl) statuses(ctx context.Context) []entities.Option {
	if opts, err := h.svc.Statuses(ctx); err == nil && len(opts) > 0 {
		return opts
	}
	return harvest.Statuses
}

type listView struct {
	Items     []entities.HarvestedProduct
	Stats     harvest.Stats
	Pager     crud.Pager
	Query     url.Values
	Filters   harvest.ListFilters
	PageSize  int
	PageSizes []int
	Statuses  []entities.Option
	Campaigns []string
	Plots     []string
	Crops     []string
	Shown     int
}

// load fetches the whole inventory and filters and pages it in memory.
// rows holds every filtered row, view.Items only the current page.
func (h *harvestCtrl) load(c echo.Context) (view listView, rows []entities.HarvestedProduct, st crud.ListState[entities.HarvestedProduct]) {
	q := c.QueryParams()
	ctx := c.Request().Context()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	if size <= 0 {
		size = h.opts.PageSize
	}
	f := harvest.ListFilters{
		Search:   strings.TrimSpace(q.Get("search")),
		Status:   q.Get("estado"),
		Campaign: q.Get("campania"),
		Plot:     q.Get("parcela"),
		Crop:     q.Get("cultivo"),
		From:     q.Get("fecha_desde"),
		To:       q.Get("fecha_hasta"),
	}

	var fb func() []entities.HarvestedProduct
	if h.opts.Fallback {
		fb = fallback.HarvestedProducts
	}
	st = crud.LoadList(ctx, func(ctx context.Context) (crud.Page[entities.HarvestedProduct], error) {
		return h.svc.List(ctx, nil)
	}, fb)
	rows = crud.Filter(st.Items, f.Match)

	var campaigns, plots, crops []string
	for _, p := range st.Items {
		campaigns = append(campaigns, p.CampaignName)
		plots = append(plots, p.PlotName)
		crops = append(crops, p.CropSpecies)
	}
	keep := url.Values{}
	for k, v := range q {
		if k != "page" && len(v) > 0 && v[0] != "" {
			keep[k] = v
		}
	}
	pager := crud.NewPager(page, size, len(rows))
	return listView{
		Items:     crud.Paginate(rows, pager.Page, size),
		Stats:     harvest.ComputeStats(st.Items),
		Pager:     pager,
		Query:     keep,
		Filters:   f,
		PageSize:  size,
		PageSizes: pageSizes,
		Statuses:  h.statuses(ctx),
		Campaigns: crud.Distinct(campaigns),
		Plots:     crud.Distinct(plots),
		Crops:     crud.Distinct(crops),
		Shown:     len(rows),
	}, rows, st
}

func (h *harvestCtrl) List(c echo.Context) error {
	view, _, st := h.load(c)
	return web.Render(c, http.StatusOK, "harvest_list", web.Page{
		Title:    "Productos cosechados",
		Section:  section,
		Error:    st.Error,
		Degraded: st.Degraded,
		Data:     view,
	})
}

var exportColumns = []report.Column[entities.HarvestedProduct]{
	{Header: "ID", Value: func(p entities.HarvestedProduct) any { return p.ID }},
	{Header: "Fecha cosecha", Value: func(p entities.HarvestedProduct) any { return p.HarvestDate }},
	{Header: "Cultivo", Value: func(p entities.HarvestedProduct) any { return harvest.CropName(p) }},
	{Header: "Cantidad", Value: func(p entities.HarvestedProduct) any { return p.Quantity.V }},
	{Header: "Unidad", Value: func(p entities.HarvestedProduct) any { return p.Unit }},
	{Header: "Calidad", Value: func(p entities.HarvestedProduct) any { return p.Quality }},
	{Header: "Estado", Value: func(p entities.HarvestedProduct) any { return p.Status }},
	{Header: "Lote", Value: func(p entities.HarvestedProduct) any { return p.Lot.String() }},
	{Header: "Ubicación", Value: func(p entities.HarvestedProduct) any { return p.WarehouseLocation }},
	{Header: "Origen", Value: func(p entities.HarvestedProduct) any { return harvest.Origin(p) }},
	{Header: "Socio", Value: func(p entities.HarvestedProduct) any { return p.MemberName }},
	{Header: "Días en almacén", Value: func(p entities.HarvestedProduct) any { return p.DaysInStorage }},
}

// Export downloads every row matching the current filters.
func (h *harvestCtrl) Export(c echo.Context) error {
	_, rows, st := h.load(c)
	if target, ok := web.PendingLogin(c); ok {
		return c.Redirect(http.StatusSeeOther, target)
	}
	if st.Error != "" && !st.Degraded {
		return web.RedirectFlash(c, listPath, "Error al exportar productos: "+st.Error, web.FlashError)
	}
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, report.ContentType)
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="productos-cosechados.xlsx"`)
	res.WriteHeader(http.StatusOK)
	if err := report.Write(res, "Productos", exportColumns, rows); err != nil {
		h.log.Error("export", zap.Error(err))
		return err
	}
	return nil
}

type detailView struct {
	Product  entities.HarvestedProduct
	Crop     string
	Origin   string
	Tab      string
	Statuses []entities.Option
}

var tabs = map[string]bool{"informacion": true, "almacen": true, "auditoria": true}

func (h *harvestCtrl) Detail(c echo.Context) error {
	id, err := crud.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "producto no encontrado")
	}
	ctx := c.Request().Context()
	p := web.Page{Title: "Detalle del producto", Section: section}
	prod, err := h.svc.Get(ctx, id)
	if err != nil {
		p.Error = "Error al cargar los detalles del producto: " + apiclient.Message(err)
		if h.opts.Fallback {
			prod = fallback.HarvestedProduct(id)
			p.Degraded = true
		} else {
			prod = entities.HarvestedProduct{ID: id}
		}
	}
	tab := c.QueryParam("tab")
	if !tabs[tab] {
		tab = "informacion"
	}
	p.Data = detailView{
		Product:  prod,
		Crop:     harvest.CropName(prod),
		Origin:   harvest.Origin(prod),
		Tab:      tab,
		Statuses: h.statuses(ctx),
	}
	return web.Render(c, http.StatusOK, "harvest_detail", p)
}

type formView struct {
	ID        int64
	Action    string
	Form      harvest.Form
	Errors    crud.FieldErrors
	Units     []entities.Option
	Qualities []entities.Option
	Statuses  []entities.Option
	Crops     []entities.Option
	Labors    []entities.Option
	Campaigns []entities.Option
	Plots     []entities.Option
}

func (h *harvestCtrl) renderForm(c echo.Context, status int, id int64, f harvest.Form, lk entities.Lookups, errs crud.FieldErrors, msg string) error {
	title, action := "Crear producto cosechado", listPath+"/nuevo"
	if id > 0 {
		title, action = "Editar producto cosechado", fmt.Sprintf("%s/%d/editar", listPath, id)
	}
	if msg == "" {
		msg = lk.Error
	}
	formlookup.Remember(c.Request().Context(), formlookup.KeyHarvestForm, lk)
	if errs == nil {
		errs = crud.FieldErrors{}
	}
	return web.Render(c, status, "harvest_form", web.Page{
		Title:    title,
		Section:  section,
		Error:    msg,
		Degraded: lk.Degraded,
		Data: formView{
			ID:        id,
			Action:    action,
			Form:      f,
			Errors:    errs,
			Units:     harvest.Units,
			Qualities: harvest.Qualities,
			Statuses:  h.statuses(c.Request().Context()),
			Crops:     entities.Options(lk.Crops),
			Labors:    entities.Options(lk.Labors),
			Campaigns: entities.Options(lk.Campaigns),
			Plots:     entities.Options(lk.Plots),
		},
	})
}

func (h *harvestCtrl) New(c echo.Context) error {
	lk, _ := h.lookups.ForHarvest(c.Request().Context())
	return h.renderForm(c, http.StatusOK, 0, harvest.NewForm(), lk, nil, "")
}

func (h *harvestCtrl) Edit(c echo.Context) error {
	id, err := crud.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "producto no encontrado")
	}
	ctx := c.Request().Context()
	lk, _ := h.lookups.ForHarvest(ctx)
	prod, err := h.svc.Get(ctx, id)
	if err != nil {
		msg := "Error al cargar los datos del producto: " + apiclient.Message(err)
		f := harvest.Form{}
		if h.opts.Fallback {
			f = harvest.FormFromProduct(fallback.HarvestedProduct(id))
			lk.Degraded = true
		}
		return h.renderForm(c, http.StatusOK, id, f, lk, nil, msg)
	}
	return h.renderForm(c, http.StatusOK, id, harvest.FormFromProduct(prod), lk, nil, "")
}

func (h *harvestCtrl) Create(c echo.Context) error { return h.save(c, 0) }

func (h *harvestCtrl) Update(c echo.Context) error {
	id, err := crud.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "producto no encontrado")
	}
	return h.save(c, id)
}

func (h *harvestCtrl) save(c echo.Context, id int64) error {
	var f harvest.Form
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "formulario inválido")
	}
	ctx := c.Request().Context()

	if c.FormValue("_action") == crud.ActionRefresh {
		changed := c.FormValue("_changed")
		f.Set(changed, c.FormValue(changed))
		lk, _ := formlookup.Recall(ctx, formlookup.KeyHarvestForm, h.lookups.ForHarvest)
		form, _ := c.FormParams()
		return h.renderForm(c, http.StatusOK, id, f, lk, crud.CarriedErrors(form, changed), "")
	}

	lk, _ := h.lookups.ForHarvest(ctx)

	errs := f.Validate(h.opts.Location)
	if errs.Any() {
		return h.renderForm(c, http.StatusUnprocessableEntity, id, f, lk, errs, "")
	}
	if id == 0 {
		// A failed check lets the backend decide.
		if taken, err := h.svc.LotExists(ctx, strings.TrimSpace(f.Lot)); err == nil && taken {
			errs.Add("lote", harvest.MsgLotTaken)
			return h.renderForm(c, http.StatusUnprocessableEntity, id, f, lk, errs, "")
		}
	}
	payload, err := f.Payload()
	if err != nil {
		return h.renderForm(c, http.StatusUnprocessableEntity, id, f, lk, errs, err.Error())
	}

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
		msg := fmt.Sprintf("Error al %s el producto: %s", verb, apiclient.Message(err))
		return h.renderForm(c, http.StatusUnprocessableEntity, id, f, lk, errs, msg)
	}
	return web.RedirectFlash(c, listPath, fmt.Sprintf("Producto cosechado %s exitosamente", done), web.FlashSuccess)
}

func (h *harvestCtrl) Sell(c echo.Context) error {
	back := web.LocalPath(c.FormValue("_back"), listPath)
	id, err := crud.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "producto no encontrado")
	}
	qty, err := harvest.ParseSale(c.FormValue("cantidad_vendida"))
	if err != nil {
		return web.RedirectFlash(c, back, "Cantidad inválida", web.FlashError)
	}
	if err := h.svc.Sell(c.Request().Context(), id, qty, harvest.SaleNotes); err != nil {
		return web.RedirectFlash(c, back, "Error al vender producto: "+apiclient.Message(err), web.FlashError)
	}
	return web.RedirectFlash(c, back, "Producto vendido exitosamente", web.FlashSuccess)
}

// ChangeStatus ignores a submit that keeps the current status.
func (h *harvestCtrl) ChangeStatus(c echo.Context) error {
	back := web.LocalPath(c.FormValue("_back"), listPath)
	id, err := crud.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "producto no encontrado")
	}
	status := strings.TrimSpace(c.FormValue("nuevo_estado"))
	if status == "" || status == c.FormValue("estado_actual") {
		return web.Redirect(c, back)
	}
	if err := h.svc.ChangeStatus(c.Request().Context(), id, status, harvest.StatusNotes); err != nil {
		return web.RedirectFlash(c, back, "Error al cambiar estado: "+apiclient.Message(err), web.FlashError)
	}
	return web.RedirectFlash(c, back, "Estado cambiado exitosamente", web.FlashSuccess)
}

func (h *harvestCtrl) Delete(c echo.Context) error {
	id, err := crud.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "producto no encontrado")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		back := web.LocalPath(c.FormValue("_back"), listPath)
		return web.RedirectFlash(c, back, "Error al eliminar producto: "+apiclient.Message(err), web.FlashError)
	}
	return web.RedirectFlash(c, listPath, "Producto eliminado exitosamente", web.FlashSuccess)
}

type reportView struct {
	From        string
	To          string
	Inventory   []report.Row
	Period      []report.Row
	NearExpiry  []entities.HarvestedProduct
	Sellable    []entities.HarvestedProduct
	Errors      []string
	ExpiryLimit int
}

// Report loads the inventory summaries in parallel. A failing section is
// reported and the others still render.
func (h *harvestCtrl) Report(c echo.Context) error {
	now := time.Now().In(h.opts.Location)
	from := c.QueryParam("fecha_desde")
	if from == "" {
		from = crud.DateOnly(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, h.opts.Location))
	}
	to := c.QueryParam("fecha_hasta")
	if to == "" {
		to = crud.DateOnly(now)
	}

	ctx := c.Request().Context()
	var (
		inventory, period    map[string]any
		nearExpiry, sellable []entities.HarvestedProduct
		errInv, errPer       error
		errExp, errSell      error
	)
	var g errgroup.Group
	g.Go(func() error { inventory, errInv = h.svc.InventoryReport(ctx); return nil })
	g.Go(func() error { period, errPer = h.svc.PeriodReport(ctx, from, to); return nil })
	g.Go(func() error { nearExpiry, errExp = h.svc.NearExpiry(ctx, harvest.NearExpiryWindow); return nil })
	g.Go(func() error { sellable, errSell = h.svc.Sellable(ctx); return nil })
	_ = g.Wait()

	view := reportView{
		From:        from,
		To:          to,
		Inventory:   report.Rows(inventory),
		Period:      report.Rows(period),
		NearExpiry:  nearExpiry,
		Sellable:    sellable,
		ExpiryLimit: harvest.NearExpiryWindow,
	}
	for _, e := range []struct {
		what string
		err  error
	}{{"reporte de inventario", errInv}, {"reporte por período", errPer}, {"productos por vencer", errExp}, {"productos vendibles", errSell}} {
		if e.err != nil {
			view.Errors = append(view.Errors, fmt.Sprintf("Error al obtener %s: %s", e.what, apiclient.Message(e.err)))
		}
	}
	return web.Render(c, http.StatusOK, "harvest_report", web.Page{
		Title:   "Reporte de inventario",
		Section: section,
		Data:    view,
	})
}

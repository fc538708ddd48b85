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

	"cooperativa/entities"
	"cooperativa/pkg/apiclient"
	"cooperativa/pkg/crud"
	"cooperativa/pkg/fallback"
	"cooperativa/pkg/labor"
	"cooperativa/pkg/labor/controller"
	"cooperativa/pkg/labor/service"
	formlookup "cooperativa/pkg/lookup"
	lookup "cooperativa/pkg/lookup/service"
	"cooperativa/pkg/report"
	"cooperativa/pkg/web"
)

const (
	listPath = "/labores"
	section  = "labores"
)

var pageSizes = []int{10, 25, 50, 100}

// localFilterWindow is how many rows are fetched when campaign or plot
// filters apply; those rows are then filtered and paged here.
const localFilterWindow = 500

type Options struct {
	Location *time.Location
	PageSize int
	// Fallback substitutes example records when the backend fails.
	Fallback bool
}

type laborCtrl struct {
	svc     service.LaborService
	lookups lookup.LookupService
	log     *zap.Logger
	opts    Options
}

func New(svc service.LaborService, lookups lookup.LookupService, log *zap.Logger, opts Options) controller.LaborController {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 25
	}
	return &laborCtrl{svc: svc, lookups: lookups, log: log.Named("laborController"), opts: opts}
}

type listView struct {
	Items     []entities.Labor
	Stats     labor.Stats
	Pager     crud.Pager
	Query     url.Values
	Search    string
	Filters   crud.Filters
	PageSize  int
	PageSizes []int
	States    []string
	Types     []string
	Campaigns []string
	Plots     []string
}

// load fetches one page with the current filters. Status and type go to the
// backend; campaign and plot are matched by name on the loaded rows, so with
// those filters (or on example data) one wide window is fetched and paged in
// memory to keep the pager in line with what is shown.
func (h *laborCtrl) load(c echo.Context) (listView, crud.ListState[entities.Labor]) {
	q := c.QueryParams()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(q.Get("page_size"))
	if size <= 0 {
		size = h.opts.PageSize
	}
	search := strings.TrimSpace(q.Get("search"))
	filters := crud.Filters{
		"estado":     q.Get("estado"),
		"tipo":       q.Get("tipo"),
		"campana":    q.Get("campana"),
		"parcela":    q.Get("parcela"),
		"fechaDesde": q.Get("fecha_desde"),
		"fechaHasta": q.Get("fecha_hasta"),
	}

	params := labor.BuildSearchParams(crud.Filters{
		"estado":     filters["estado"],
		"tipo":       filters["tipo"],
		"fechaDesde": filters["fechaDesde"],
		"fechaHasta": filters["fechaHasta"],
	})
	local := filters["campana"] != "" || filters["parcela"] != ""
	if local {
		params.Set("page", "1")
		params.Set("page_size", strconv.Itoa(localFilterWindow))
	} else {
		params.Set("page", strconv.Itoa(page))
		params.Set("page_size", strconv.Itoa(size))
	}
	if search != "" {
		params.Set("search", search)
	}

	var fb func() []entities.Labor
	if h.opts.Fallback {
		fb = fallback.Labors
	}
	st := crud.LoadList(c.Request().Context(), func(ctx context.Context) (crud.Page[entities.Labor], error) {
		return h.svc.List(ctx, params)
	}, fb)

	rows := crud.Filter(st.Items, func(l entities.Labor) bool {
		if f := filters["estado"]; f != "" && l.Status != f {
			return false
		}
		if f := filters["tipo"]; f != "" && l.Type != f {
			return false
		}
		if f := filters["campana"]; f != "" && l.CampaignName != f {
			return false
		}
		if f := filters["parcela"]; f != "" && l.PlotName != f {
			return false
		}
		if st.Degraded {
			return crud.MatchAny(search, l.Description, l.TypeDisplay, l.CampaignName, l.PlotName, l.MemberName)
		}
		return true
	})

	keep := url.Values{}
	for k, v := range q {
		if k != "page" && len(v) > 0 && v[0] != "" {
			keep[k] = v
		}
	}

	var states, types, campaigns, plots []string
	for _, l := range st.Items {
		states = append(states, l.Status)
		types = append(types, l.Type)
		campaigns = append(campaigns, l.CampaignName)
		plots = append(plots, l.PlotName)
	}

	pager := crud.NewPager(page, size, st.Count)
	if local || st.Degraded {
		pager = crud.NewPager(page, size, len(rows))
		rows = crud.Paginate(rows, pager.Page, size)
	}

	return listView{
		Items:     rows,
		Stats:     labor.ComputeStats(st.Items),
		Pager:     pager,
		Query:     keep,
		Search:    search,
		Filters:   filters,
		PageSize:  size,
		PageSizes: pageSizes,
		States:    crud.Distinct(states),
		Types:     crud.Distinct(types),
		Campaigns: crud.Distinct(campaigns),
		Plots:     crud.Distinct(plots),
	}, st
}

func (h *laborCtrl) List(c echo.Context) error {
	view, st := h.load(c)
	return web.Render(c, http.StatusOK, "labor_list", web.Page{
		Title:    "Labores",
		Section:  section,
		Error:    st.Error,
		Degraded: st.Degraded,
		Data:     view,
	})
}

var exportColumns = []report.Column[entities.Labor]{
	{Header: "ID", Value: func(l entities.Labor) any { return l.ID }},
	{Header: "Fecha", Value: func(l entities.Labor) any { return l.Date }},
	{Header: "Tipo", Value: func(l entities.Labor) any { return labor.TypeLabel(l.Type) }},
	{Header: "Estado", Value: func(l entities.Labor) any { return labor.StateLabel(l.Status) }},
	{Header: "Campaña", Value: func(l entities.Labor) any { return l.CampaignName }},
	{Header: "Parcela", Value: func(l entities.Labor) any { return l.PlotName }},
	{Header: "Socio", Value: func(l entities.Labor) any { return l.MemberName }},
	{Header: "Insumo", Value: func(l entities.Labor) any { return l.InputName }},
	{Header: "Cantidad insumo", Value: func(l entities.Labor) any { return cell(l.InputQuantity) }},
	{Header: "Descripción", Value: func(l entities.Labor) any { return l.Description }},
	{Header: "Costo estimado", Value: func(l entities.Labor) any { return cell(l.EstimatedCost) }},
	{Header: "Costo total", Value: func(l entities.Labor) any { return cell(l.TotalCost) }},
	{Header: "Duración (h)", Value: func(l entities.Labor) any { return cell(l.DurationHours) }},
	{Header: "Responsable", Value: func(l entities.Labor) any { return l.ResponsibleName }},
}

func cell(n entities.Number) any {
	if !n.Set {
		return ""
	}
	return n.V
}

// Export downloads the rows of the current list view.
func (h *laborCtrl) Export(c echo.Context) error {
	view, st := h.load(c)
	if target, ok := web.PendingLogin(c); ok {
		return c.Redirect(http.StatusSeeOther, target)
	}
	if st.Error != "" && !st.Degraded {
		return web.RedirectFlash(c, listPath, "Error al exportar labores: "+st.Error, web.FlashError)
	}
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, report.ContentType)
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="labores.xlsx"`)
	res.WriteHeader(http.StatusOK)
	if err := report.Write(res, "Labores", exportColumns, view.Items); err != nil {
		h.log.Error("export", zap.Error(err))
		return err
	}
	return nil
}

type detailView struct {
	Labor      entities.Labor
	Tab        string
	NextStates []string
}

var tabs = map[string]bool{"informacion": true, "recursos": true, "auditoria": true}

func (h *laborCtrl) Detail(c echo.Context) error {
	id, err := crud.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "labor no encontrada")
	}
	p := web.Page{Title: "Detalle de labor", Section: section}
	l, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		p.Error = "Error al cargar los detalles de la labor: " + apiclient.Message(err)
		if h.opts.Fallback {
			l = fallback.Labor(id)
			p.Degraded = true
		} else {
			l = entities.Labor{ID: id}
		}
	}
	tab := c.QueryParam("tab")
	if !tabs[tab] {
		tab = "informacion"
	}
	p.Data = detailView{Labor: l, Tab: tab, NextStates: labor.NextStates(l.Status)}
	return web.Render(c, http.StatusOK, "labor_detail", p)
}

type formView struct {
	ID           int64
	Action       string
	Form         labor.Form
	Errors       crud.FieldErrors
	Advisory     string
	StockInfo    string
	Types        []entities.Option
	States       []entities.Option
	Campaigns    []entities.Option
	Plots        []entities.Option
	Inputs       []entities.Option
	Responsibles []entities.Option
}

func (h *laborCtrl) renderForm(c echo.Context, status int, id int64, f labor.Form, lk entities.Lookups, errs crud.FieldErrors, msg string) error {
	title, action := "Nueva labor", listPath+"/nueva"
	if id > 0 {
		title, action = "Editar labor", fmt.Sprintf("%s/%d/editar", listPath, id)
	}
	if msg == "" {
		msg = lk.Error
	}
	formlookup.Remember(c.Request().Context(), formlookup.KeyLaborForm, lk)
	if errs == nil {
		errs = crud.FieldErrors{}
	}
	return web.Render(c, status, "labor_form", web.Page{
		Title:    title,
		Section:  section,
		Error:    msg,
		Degraded: lk.Degraded,
		Data: formView{
			ID:           id,
			Action:       action,
			Form:         f,
			Errors:       errs,
			Advisory:     f.Advisory(lk),
			StockInfo:    f.StockInfo(lk),
			Types:        labor.Types,
			States:       labor.States,
			Campaigns:    entities.Options(lk.Campaigns),
			Plots:        entities.Options(lk.Plots),
			Inputs:       entities.Options(lk.Inputs),
			Responsibles: entities.Options(lk.Responsibles),
		},
	})
}

func (h *laborCtrl) New(c echo.Context) error {
	lk, _ := h.lookups.ForLabor(c.Request().Context())
	return h.renderForm(c, http.StatusOK, 0, labor.NewForm(h.opts.Location), lk, nil, "")
}

func (h *laborCtrl) Edit(c echo.Context) error {
	id, err := crud.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "labor no encontrada")
	}
	ctx := c.Request().Context()
	lk, _ := h.lookups.ForLabor(ctx)
	l, err := h.svc.Get(ctx, id)
	if err != nil {
		msg := "Error al cargar los datos de la labor: " + apiclient.Message(err)
		f := labor.Form{}
		if h.opts.Fallback {
			f = labor.FormFromLabor(fallback.Labor(id))
			lk.Degraded = true
		}
		return h.renderForm(c, http.StatusOK, id, f, lk, nil, msg)
	}
	return h.renderForm(c, http.StatusOK, id, labor.FormFromLabor(l), lk, nil, "")
}

func (h *laborCtrl) Create(c echo.Context) error { return h.save(c, 0) }

func (h *laborCtrl) Update(c echo.Context) error {
	id, err := crud.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "labor no encontrada")
	}
	return h.save(c, id)
}

// save handles both field refreshes and the final submit of the form.
func (h *laborCtrl) save(c echo.Context, id int64) error {
	var f labor.Form
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "formulario inválido")
	}
	f.Normalize()
	ctx := c.Request().Context()

	if c.FormValue("_action") == crud.ActionRefresh {
		changed := c.FormValue("_changed")
		f.Set(changed, c.FormValue(changed))
		lk, _ := formlookup.Recall(ctx, formlookup.KeyLaborForm, h.lookups.ForLabor)
		form, _ := c.FormParams()
		return h.renderForm(c, http.StatusOK, id, f, lk, crud.CarriedErrors(form, changed), "")
	}

	lk, _ := h.lookups.ForLabor(ctx)
	errs := f.Validate(lk, h.opts.Location)
	if errs.Any() {
		return h.renderForm(c, http.StatusUnprocessableEntity, id, f, lk, errs, "")
	}
	payload, err := f.Payload()
	if err != nil {
		return h.renderForm(c, http.StatusUnprocessableEntity, id, f, lk, errs, err.Error())
	}

	verb, done := "crear", "creada"
	if id > 0 {
		verb, done = "actualizar", "actualizada"
		_, err = h.svc.Update(ctx, id, payload)
	} else {
		_, err = h.svc.Create(ctx, payload)
	}
	if err != nil {
		if apiErr, ok := apiclient.AsError(err); ok {
			errs.Merge(apiErr.Fields)
		}
		msg := fmt.Sprintf("Error al %s la labor: %s", verb, apiclient.Message(err))
		return h.renderForm(c, http.StatusUnprocessableEntity, id, f, lk, errs, msg)
	}
	return web.RedirectFlash(c, listPath, fmt.Sprintf("Labor %s exitosamente", done), web.FlashSuccess)
}

func (h *laborCtrl) ChangeState(c echo.Context) error {
	back := web.LocalPath(c.FormValue("_back"), listPath)
	id, err := crud.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "labor no encontrada")
	}
	state := c.FormValue("estado")
	if !validState(state) {
		return web.RedirectFlash(c, back, "Estado inválido", web.FlashError)
	}
	if err := h.svc.ChangeState(c.Request().Context(), id, state, c.FormValue("observaciones")); err != nil {
		return web.RedirectFlash(c, back, "Error al cambiar estado: "+apiclient.Message(err), web.FlashError)
	}
	return web.RedirectFlash(c, back, "Estado actualizado a "+labor.StateLabel(state), web.FlashSuccess)
}

func validState(s string) bool {
	for _, o := range labor.States {
		if o.Value == s {
			return true
		}
	}
	return false
}

func (h *laborCtrl) Delete(c echo.Context) error {
	back := web.LocalPath(c.FormValue("_back"), listPath)
	id, err := crud.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "labor no encontrada")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return web.RedirectFlash(c, back, "Error al eliminar labor: "+apiclient.Message(err), web.FlashError)
	}
	return web.RedirectFlash(c, listPath, "Labor eliminada exitosamente", web.FlashSuccess)
}

type reportView struct {
	From string
	To   string
	Rows []report.Row
}

// Report shows the backend's labor report for a date range, defaulting to
// the current month.
func (h *laborCtrl) Report(c echo.Context) error {
	now := time.Now().In(h.opts.Location)
	from := c.QueryParam("fecha_desde")
	if from == "" {
		from = crud.DateOnly(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, h.opts.Location))
	}
	to := c.QueryParam("fecha_hasta")
	if to == "" {
		to = crud.DateOnly(now)
	}
	p := web.Page{Title: "Reporte de labores", Section: section}
	view := reportView{From: from, To: to}
	data, err := h.svc.PeriodReport(c.Request().Context(), from, to)
	if err != nil {
		p.Error = "Error al obtener el reporte: " + apiclient.Message(err)
	}
	view.Rows = report.Rows(data)
	p.Data = view
	return web.Render(c, http.StatusOK, "labor_report", p)
}

// CampaignDate answers the date advisory for the form as JSON.
func (h *laborCtrl) CampaignDate(c echo.Context) error {
	ctx := c.Request().Context()
	date := c.QueryParam("fecha")
	ref, err := entities.ParseRef(c.QueryParam("campaña"))
	if err != nil || !ref.Set || date == "" {
		return c.JSON(http.StatusOK, map[string]any{"advertencia": ""})
	}
	resp := map[string]any{"advertencia": ""}
	if res, err := h.svc.ValidateCampaignDate(ctx, ref.ID, date); err == nil {
		resp["servidor"] = res
	}
	lk, _ := h.lookups.ForLabor(ctx)
	if camp, ok := lk.Campaign(ref); ok {
		resp["advertencia"] = labor.CampaignAdvisory(date, camp)
	}
	return c.JSON(http.StatusOK, resp)
}

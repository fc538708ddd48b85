package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	authCtrl "cooperativa/pkg/auth/controller"
	harvestCtrl "cooperativa/pkg/harvest/controller"
	laborCtrl "cooperativa/pkg/labor/controller"
	"cooperativa/pkg/middleware"
	paymentCtrl "cooperativa/pkg/paymentmethod/controller"
	"cooperativa/pkg/session/repository"
	"cooperativa/pkg/web"
)

type Options struct {
	SessionCookie string
	RequireLogin  bool
	Log           *zap.Logger
}

func New(
	e *echo.Echo,
	sessions repository.SessionRepository,
	auth authCtrl.AuthController,
	labor laborCtrl.LaborController,
	payment paymentCtrl.PaymentMethodController,
	harvest harvestCtrl.HarvestController,
	healthCtrl interface{ Health(echo.Context) error },
	opts Options,
) *echo.Echo {
	e.HTTPErrorHandler = errorHandler(opts.Log)
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.RequestLogger(opts.Log))
	e.Use(middleware.Session(sessions, opts.SessionCookie, opts.Log))
	e.Use(middleware.CSRF())
	e.Use(middleware.RequireLogin(opts.RequireLogin))

	e.GET("/health", healthCtrl.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, "/labores")
	})

	e.GET("/login", auth.LoginPage)
	e.POST("/login", auth.Login)
	e.POST("/logout", auth.Logout)
	e.GET("/whoami", auth.WhoAmI)

	// static segments are registered before :id
	l := e.Group("/labores")
	l.GET("", labor.List)
	l.GET("/export.xlsx", labor.Export)
	l.GET("/reporte", labor.Report)
	l.GET("/fecha-campana", labor.CampaignDate)
	l.GET("/nueva", labor.New)
	l.POST("/nueva", labor.Create)
	l.GET("/:id", labor.Detail)
	l.GET("/:id/editar", labor.Edit)
	l.POST("/:id/editar", labor.Update)
	l.POST("/:id/estado", labor.ChangeState)
	l.POST("/:id/eliminar", labor.Delete)

	p := e.Group("/metodos-pago")
	p.GET("", payment.List)
	p.GET("/nuevo", payment.New)
	p.POST("/nuevo", payment.Create)
	p.GET("/:id", payment.Detail)
	p.GET("/:id/editar", payment.Edit)
	p.POST("/:id/editar", payment.Update)
	p.POST("/:id/activar", payment.Toggle)
	p.POST("/:id/eliminar", payment.Delete)
	p.POST("/:id/mover", payment.Move)

	h := e.Group("/productos-cosechados")
	h.GET("", harvest.List)
	h.GET("/export.xlsx", harvest.Export)
	h.GET("/reporte", harvest.Report)
	h.GET("/nuevo", harvest.New)
	h.POST("/nuevo", harvest.Create)
	h.GET("/:id", harvest.Detail)
	h.GET("/:id/editar", harvest.Edit)
	h.POST("/:id/editar", harvest.Update)
	h.POST("/:id/vender", harvest.Sell)
	h.POST("/:id/estado", harvest.ChangeStatus)
	h.POST("/:id/eliminar", harvest.Delete)

	return e
}

// errorHandler renders unhandled errors with the error page.
func errorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		title := "Error interno del servidor"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			switch code {
			case http.StatusNotFound:
				title = "Página no encontrada"
			case http.StatusMethodNotAllowed:
				title = "Método no permitido"
			case http.StatusForbidden:
				title = "Solicitud rechazada"
			default:
				title = http.StatusText(code)
			}
		}
		if code >= http.StatusInternalServerError {
			log.Error("unhandled", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		}
		if rerr := web.Render(c, code, "error", web.Page{Title: title}); rerr != nil {
			_ = c.String(code, title)
		}
	}
}

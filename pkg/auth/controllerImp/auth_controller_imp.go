package controllerImp

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cooperativa/pkg/apiclient"
	"cooperativa/pkg/auth/controller"
	"cooperativa/pkg/session"
	"cooperativa/pkg/web"
)

const (
	csrfPath   = "/api/auth/csrf/"
	loginPath  = "/api/auth/login/"
	logoutPath = "/api/auth/logout/"

	homePath = "/labores"
)

type authCtrl struct {
	api *apiclient.Client
	log *zap.Logger
}

func NewAuthController(api *apiclient.Client, log *zap.Logger) controller.AuthController {
	return &authCtrl{api: api, log: log.Named("auth")}
}

type loginView struct {
	Next     string
	Username string
}

func (h *authCtrl) LoginPage(c echo.Context) error {
	next := web.LocalPath(c.QueryParam("next"), homePath)
	return web.Render(c, http.StatusOK, "login", web.Page{
		Title: "Ingresar",
		Data:  loginView{Next: next},
	})
}

func (h *authCtrl) Login(c echo.Context) error {
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")
	next := web.LocalPath(c.FormValue("next"), homePath)
	view := loginView{Next: next, Username: username}

	if username == "" || password == "" {
		return c.Render(http.StatusUnprocessableEntity, "login", h.page(c, view, "Usuario y contraseña son requeridos"))
	}

	ctx := c.Request().Context()
	if err := h.api.Get(ctx, csrfPath, nil, nil); err != nil {
		h.log.Warn("csrf bootstrap", zap.Error(err))
	}

	var body map[string]json.RawMessage
	err := h.api.Post(ctx, loginPath, map[string]string{"username": username, "password": password}, &body)
	if err != nil {
		h.log.Info("login rejected", zap.String("username", username), zap.Error(err))
		return c.Render(http.StatusUnauthorized, "login", h.page(c, view, apiclient.Message(err)))
	}

	store := session.FromContext(ctx)
	if store != nil {
		user, ok := body["user"]
		if !ok {
			user, _ = json.Marshal(body)
		}
		store.Set(session.KeyUserData, string(user))
		session.SetFlash(store, "Sesión iniciada", web.FlashSuccess)
	}
	h.log.Info("login", zap.String("username", username))
	return c.Redirect(http.StatusSeeOther, next)
}

// page builds the login page directly; web.Render would follow the pending
// navigation the failed call just requested, which points back here.
func (h *authCtrl) page(c echo.Context, v loginView, msg string) web.Page {
	return web.Page{Title: "Ingresar", Path: c.Request().URL.Path, CSRF: web.CSRFToken(c), Error: msg, Data: v}
}

func (h *authCtrl) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.api.Post(ctx, logoutPath, nil, nil); err != nil {
		h.log.Warn("logout", zap.Error(err))
	}
	if store := session.FromContext(ctx); store != nil {
		store.Delete(session.KeyUserData, session.KeyCSRFToken, session.KeyCookies)
		session.SetFlash(store, "Sesión cerrada", web.FlashInfo)
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (h *authCtrl) WhoAmI(c echo.Context) error {
	store := session.FromContext(c.Request().Context())
	if store == nil || store.Get(session.KeyUserData) == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "no autenticado"})
	}
	return c.JSONBlob(http.StatusOK, []byte(store.Get(session.KeyUserData)))
}

package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"cooperativa/pkg/web"
)

// CSRFCookie holds the token the app's own forms must echo back as _csrf.
const CSRFCookie = "coop_csrf"

// CSRF rejects POSTs whose _csrf form field does not match the token cookie.
// A missing token is answered 403 like a wrong one.
func CSRF() echo.MiddlewareFunc {
	return echoMiddleware.CSRFWithConfig(echoMiddleware.CSRFConfig{
		TokenLookup:    "form:_csrf",
		ContextKey:     web.CSRFContextKey,
		CookieName:     CSRFCookie,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
		ErrorHandler: func(err error, c echo.Context) error {
			return echo.NewHTTPError(http.StatusForbidden, "token CSRF inválido")
		},
	})
}

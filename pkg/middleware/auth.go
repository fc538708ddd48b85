package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"cooperativa/pkg/session"
)

// Paths served without a logged-in user.
var public = []string{"/login", "/health", "/metrics", "/favicon.ico"}

// RequireLogin sends visitors without a stored user to the login page. When
// enabled=false it passes everything through.
func RequireLogin(enabled bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !enabled {
				return next(c)
			}
			path := c.Request().URL.Path
			for _, p := range public {
				if path == p || strings.HasPrefix(path, p+"/") {
					return next(c)
				}
			}
			store := session.FromContext(c.Request().Context())
			if store != nil && store.Get(session.KeyUserData) != "" {
				return next(c)
			}
			target := "/login"
			if c.Request().Method == http.MethodGet && path != "/" {
				target += "?next=" + url.QueryEscape(c.Request().URL.RequestURI())
			}
			return c.Redirect(http.StatusSeeOther, target)
		}
	}
}

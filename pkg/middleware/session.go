package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cooperativa/pkg/session"
	"cooperativa/pkg/session/repository"
)

// Session binds the browser's session id cookie, issuing one when missing,
// and puts its Store and a Navigator into the request context.
func Session(repo repository.SessionRepository, cookieName string, log *zap.Logger) echo.MiddlewareFunc {
	log = log.Named("session")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""
			if ck, err := c.Cookie(cookieName); err == nil {
				if _, err := uuid.Parse(ck.Value); err == nil {
					sid = ck.Value
				}
			}
			if sid == "" {
				sid = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     cookieName,
					Value:    sid,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			c.Set("sid", sid)

			req := c.Request()
			ctx := session.WithStore(req.Context(), session.NewStore(repo, sid, log))
			ctx = session.WithNavigator(ctx, session.NewNavigator(req.URL.Path))
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

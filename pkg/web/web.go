// Package web renders the server-side pages and carries the per-request
// session concerns (flash, pending login redirect) into every response.
package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cooperativa/pkg/session"
)

//go:embed templates
var templateFS embed.FS

// Page is the data every template receives.
type Page struct {
	Title   string
	Section string
	Path    string
	User    string
	Flash   *session.Flash
	// CSRF is the anti-forgery token every POST form carries as _csrf.
	CSRF string
	// Error is shown as a banner above the content.
	Error string
	// Degraded marks example data standing in for the backend's.
	Degraded bool
	Data     any
}

// Renderer implements echo.Renderer over the embedded templates. Each page
// is its own clone of the layout so "content" blocks do not collide.
type Renderer struct {
	pages map[string]*template.Template
	log   *zap.Logger
}

func NewRenderer(log *zap.Logger) (*Renderer, error) {
	base, err := template.New("").Funcs(Funcs()).ParseFS(templateFS, "templates/layout.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(files))
	for _, f := range files {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		pages[strings.TrimSuffix(path.Base(f), ".html")] = t
	}
	return &Renderer{pages: pages, log: log}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		r.log.Error("render", zap.String("page", name), zap.Error(err))
		return err
	}
	return nil
}

// PendingLogin returns the navigation requested by an API client during
// this request, if any.
func PendingLogin(c echo.Context) (string, bool) {
	nav := session.NavigatorFrom(c.Request().Context())
	if nav == nil {
		return "", false
	}
	return nav.Target()
}

// Render writes a page, or the pending login redirect instead.
func Render(c echo.Context, status int, name string, p Page) error {
	if target, ok := PendingLogin(c); ok {
		return c.Redirect(http.StatusSeeOther, target)
	}
	p.Path = c.Request().URL.Path
	p.CSRF = CSRFToken(c)
	if store := session.FromContext(c.Request().Context()); store != nil {
		if p.Flash == nil {
			p.Flash = session.PopFlash(store)
		}
		p.User = userName(store.Get(session.KeyUserData))
	}
	return c.Render(status, name, p)
}

// CSRFContextKey is where the CSRF middleware leaves the request's token.
const CSRFContextKey = "csrf"

func CSRFToken(c echo.Context) string {
	tok, _ := c.Get(CSRFContextKey).(string)
	return tok
}

// Redirect answers a POST with 303 to target, or to the pending login.
func Redirect(c echo.Context, target string) error {
	if t, ok := PendingLogin(c); ok {
		target = t
	}
	return c.Redirect(http.StatusSeeOther, target)
}

// RedirectFlash stores a one-shot message and redirects.
func RedirectFlash(c echo.Context, target, message, typ string) error {
	if store := session.FromContext(c.Request().Context()); store != nil {
		session.SetFlash(store, message, typ)
	}
	return Redirect(c, target)
}

const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

func userName(raw string) string {
	if raw == "" {
		return ""
	}
	var u struct {
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		FullName  string `json:"get_full_name"`
	}
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return ""
	}
	switch {
	case u.FullName != "":
		return u.FullName
	case u.FirstName != "":
		return u.FirstName
	}
	return u.Username
}

// LocalPath keeps redirect targets inside the app.
func LocalPath(target, def string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return def
	}
	return target
}

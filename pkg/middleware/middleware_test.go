package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"cooperativa/pkg/session"
)

type memRepo struct{ m map[string]string }

func newMemRepo() *memRepo { return &memRepo{m: map[string]string{}} }

func (r *memRepo) Get(sid, key string) (string, bool, error) {
	v, ok := r.m[sid+"|"+key]
	return v, ok, nil
}
func (r *memRepo) Set(sid, key, value string) error { r.m[sid+"|"+key] = value; return nil }
func (r *memRepo) Delete(sid string, keys ...string) error {
	for _, k := range keys {
		delete(r.m, sid+"|"+k)
	}
	return nil
}
func (r *memRepo) PurgeBefore(time.Time) (int64, error) { return 0, nil }

const cookie = "coop_sid"

func TestSessionIssuesCookie(t *testing.T) {
	e := echo.New()
	repo := newMemRepo()
	var sid string
	h := Session(repo, cookie, zap.NewNop())(func(c echo.Context) error {
		sid, _ = c.Get("sid").(string)
		store := session.FromContext(c.Request().Context())
		require.NotNil(t, store)
		store.Set("k", "v")
		require.NotNil(t, session.NavigatorFrom(c.Request().Context()))
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(httptest.NewRequest(http.MethodGet, "/labores", nil), rec)))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookie, cookies[0].Name)
	assert.Equal(t, sid, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, "v", repo.m[sid+"|k"])
}

func TestSessionReusesValidCookie(t *testing.T) {
	e := echo.New()
	const existing = "5b0f6a3e-2a51-4c6b-9d1e-0f4b8d6a7c21"
	var sid string
	h := Session(newMemRepo(), cookie, zap.NewNop())(func(c echo.Context) error {
		sid, _ = c.Get("sid").(string)
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookie, Value: existing})
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	assert.Equal(t, existing, sid)
	assert.Empty(t, rec.Result().Cookies())

	// tampered ids are replaced
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookie, Value: "../../etc"})
	rec = httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	assert.NotEqual(t, "../../etc", sid)
	assert.Len(t, rec.Result().Cookies(), 1)
}

func serveGuarded(t *testing.T, enabled bool, method, target, user string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	store := session.NewMemoryStore()
	if user != "" {
		store.Set(session.KeyUserData, user)
	}
	req := httptest.NewRequest(method, target, nil)
	req = req.WithContext(session.WithStore(req.Context(), store))
	rec := httptest.NewRecorder()
	h := RequireLogin(enabled)(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func TestRequireLogin(t *testing.T) {
	rec := serveGuarded(t, true, http.MethodGet, "/labores?page=2", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Flabores%3Fpage%3D2", rec.Header().Get(echo.HeaderLocation))

	rec = serveGuarded(t, true, http.MethodPost, "/labores/3/eliminar", "")
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	rec = serveGuarded(t, true, http.MethodGet, "/labores", `{"username":"ana"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, p := range []string{"/login", "/health", "/metrics"} {
		assert.Equal(t, http.StatusOK, serveGuarded(t, true, http.MethodGet, p, "").Code, p)
	}
	assert.Equal(t, http.StatusOK, serveGuarded(t, false, http.MethodGet, "/labores", "").Code)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := echo.New()
	e.Use(RequestLogger(zap.New(core)))
	e.GET("/labores", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/labores", nil))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "request", entry.Message)
	assert.EqualValues(t, http.StatusNoContent, entry.ContextMap()["status"])
	assert.Equal(t, "/labores", entry.ContextMap()["uri"])
}

package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cooperativa/pkg/session"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL, Name: "test", Labels: Labels{"nombre": "Nombre"}})
	require.NoError(t, err)
	return c
}

func sessionCtx(path string) (context.Context, *session.MemoryStore, *session.Navigator) {
	store := session.NewMemoryStore()
	nav := session.NewNavigator(path)
	ctx := session.WithNavigator(session.WithStore(context.Background(), store), nav)
	return ctx, store, nav
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	_, err = New(Options{BaseURL: "not a url"})
	require.Error(t, err)
}

func TestCSRFHeader(t *testing.T) {
	var got []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Method+" "+r.URL.Path+" "+r.Header.Get(HeaderCSRF))
		w.WriteHeader(http.StatusOK)
	})

	ctx, store, _ := sessionCtx("/labores")
	store.Set(session.KeyCSRFToken, "tok-1")

	require.NoError(t, c.Get(ctx, "/api/labores/", nil, nil))
	require.NoError(t, c.Post(ctx, "/api/labores/", map[string]any{"x": 1}, nil))
	require.NoError(t, c.Post(ctx, "/api/auth/login/", map[string]any{}, nil))
	require.NoError(t, c.Delete(ctx, "/api/labores/3/", nil))

	assert.Equal(t, []string{
		"GET /api/labores/ ",
		"POST /api/labores/ tok-1",
		"POST /api/auth/login/ ",
		"DELETE /api/labores/3/ tok-1",
	}, got)
}

func TestCSRFHeaderFallsBackToCookie(t *testing.T) {
	var header string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get(HeaderCSRF)
	})
	ctx, store, _ := sessionCtx("/labores")
	session.SaveCookies(store, map[string]string{CookieCSRF: "from-cookie"})

	require.NoError(t, c.Put(ctx, "/api/labores/1/", map[string]any{}, nil))
	assert.Equal(t, "from-cookie", header)
}

func TestCookiesReplayedAndCaptured(t *testing.T) {
	var sid string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("sessionid"); err == nil {
			sid = ck.Value
		}
		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "new-sid"})
		http.SetCookie(w, &http.Cookie{Name: "stale", MaxAge: -1})
	})
	ctx, store, _ := sessionCtx("/labores")
	session.SaveCookies(store, map[string]string{"sessionid": "old-sid", "stale": "x"})

	require.NoError(t, c.Get(ctx, "/api/labores/", nil, nil))
	assert.Equal(t, "old-sid", sid)
	assert.Equal(t, map[string]string{"sessionid": "new-sid"}, session.Cookies(store))
}

func TestTokenPersistenceCookieWins(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cookie") == "1" {
			http.SetCookie(w, &http.Cookie{Name: CookieCSRF, Value: "cookie-token"})
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"csrf_token": "body-token"})
	})
	ctx, store, _ := sessionCtx("/login")

	require.NoError(t, c.Get(ctx, "/api/auth/csrf/", nil, nil))
	assert.Equal(t, "body-token", store.Get(session.KeyCSRFToken))

	require.NoError(t, c.Get(ctx, "/api/auth/csrf/", url.Values{"cookie": {"1"}}, nil))
	assert.Equal(t, "cookie-token", store.Get(session.KeyCSRFToken))
}

func TestAuthFailureResetsSession(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"detail":"no"}`))
		})

		ctx, store, nav := sessionCtx("/labores")
		store.Set(session.KeyUserData, `{"id":1}`)
		store.Set(session.KeyCSRFToken, "tok")

		err := c.Get(ctx, "/api/labores/", nil, nil)
		require.Error(t, err)
		assert.True(t, IsAuth(err))
		assert.Empty(t, store.Get(session.KeyUserData))
		assert.Empty(t, store.Get(session.KeyCSRFToken))
		target, ok := nav.Target()
		assert.True(t, ok)
		assert.Equal(t, LoginPath, target)
	}
}

func TestAuthFailureOnLoginPageDoesNotNavigate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	ctx, store, nav := sessionCtx("/login")
	store.Set(session.KeyUserData, `{"username":"ana"}`)
	store.Set(session.KeyCSRFToken, "tok")

	err := c.Post(ctx, "/api/auth/login/", map[string]string{"username": "a"}, nil)
	require.Error(t, err)
	_, ok := nav.Target()
	assert.False(t, ok)
	assert.Equal(t, `{"username":"ana"}`, store.Get(session.KeyUserData))
	assert.Equal(t, "tok", store.Get(session.KeyCSRFToken))
}

func TestValidationErrorUsesLabels(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"nombre":["Requerido","Muy corto"],"orden":["Inválido"]}`))
	})
	ctx, _, _ := sessionCtx("/metodos-pago/nuevo")

	err := c.Post(ctx, "/api/payment-methods/", map[string]any{}, nil)
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, e.Status)
	assert.Equal(t, "Datos inválidos: Nombre: Requerido, Muy corto; orden: Inválido", e.Message)
	assert.Equal(t, "Inválido", e.Fields["orden"])
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: base})
	require.NoError(t, err)
	err = c.Get(context.Background(), "/api/labores/", nil, nil)
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Zero(t, e.Status)
	assert.Equal(t, msgNoConnection, e.Message)
}

func TestDecodesBodyAndQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"q": r.URL.Query().Get("search")})
	})
	var out struct {
		Q string `json:"q"`
	}
	require.NoError(t, c.Get(context.Background(), "api/labores/", url.Values{"search": {"maíz"}}, &out))
	assert.Equal(t, "maíz", out.Q)
}

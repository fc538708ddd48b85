// Package apiclient wraps the backend REST API: JSON bodies, session cookies,
// the anti-forgery header on mutating calls and the session reset on 401/403.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"cooperativa/pkg/session"
)

const (
	HeaderCSRF = "X-CSRFToken"
	CookieCSRF = "csrftoken"
	LoginPath  = "/login"
)

// Paths that must work before a token exists.
var csrfExempt = []string{"/api/auth/login/", "/api/auth/csrf/"}

type Options struct {
	BaseURL string
	// Name tags logs and metrics ("laborService", ...).
	Name string
	// Timeout bounds a whole call; zero means none.
	Timeout    time.Duration
	Labels     Labels
	Logger     *zap.Logger
	HTTPClient *http.Client
}

type Client struct {
	base   string
	name   string
	labels Labels
	httpc  *http.Client
	log    *zap.Logger
}

func New(o Options) (*Client, error) {
	if o.BaseURL == "" {
		return nil, errors.New("apiclient: BaseURL is required")
	}
	u, err := url.Parse(o.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("apiclient: invalid BaseURL %q", o.BaseURL)
	}
	httpc := o.HTTPClient
	if httpc == nil {
		// cookies belong to the browser session, not to the process: no jar
		httpc = &http.Client{Timeout: o.Timeout}
	}
	log := o.Logger
	if log == nil {
		log = zap.NewNop()
	}
	name := o.Name
	if name == "" {
		name = "api"
	}
	return &Client{
		base:   strings.TrimRight(o.BaseURL, "/"),
		name:   name,
		labels: o.Labels,
		httpc:  httpc,
		log:    log.Named(name),
	}, nil
}

func (c *Client) Name() string { return c.name }

// Labels returns the field-name translation table of this client.
func (c *Client) Labels() Labels { return c.labels }

func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, params, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do issues exactly one call. Failures come back as *Error.
func (c *Client) Do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	store := session.FromContext(ctx)

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return configError(err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, params), rdr)
	if err != nil {
		return configError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var cookies map[string]string
	if store != nil {
		cookies = session.Cookies(store)
		for name, value := range cookies {
			req.AddCookie(&http.Cookie{Name: name, Value: value})
		}
	}
	if isMutating(method) && !isCSRFExempt(path) {
		c.attachCSRF(req, store, cookies)
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		observe(c.name, method, 0, start)
		c.log.Error("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return networkError(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	observe(c.name, method, resp.StatusCode, start)
	if err != nil {
		return networkError(err)
	}

	if store != nil {
		c.persist(store, resp, data, cookies)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := responseError(resp.StatusCode, data, c.labels)
		if apiErr.IsAuth() {
			c.log.Error("authentication error",
				zap.Int("status", resp.StatusCode), zap.String("path", path), zap.ByteString("body", truncateBody(data)))
			c.resetSession(ctx, store)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{
			Status:  resp.StatusCode,
			Message: "Respuesta inválida del servidor.",
			Err:     fmt.Errorf("decode %s %s: %w", method, path, err),
		}
	}
	return nil
}

// Reachable checks that something answers at the backend origin.
func (c *Client) Reachable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) endpoint(path string, params url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.base + path
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		u += sep + params.Encode()
	}
	return u
}

func (c *Client) attachCSRF(req *http.Request, store session.Store, cookies map[string]string) {
	token := ""
	if store != nil {
		token = store.Get(session.KeyCSRFToken)
	}
	if token == "" {
		token = cookies[CookieCSRF]
	}
	if token == "" {
		c.log.Warn("no CSRF token for request", zap.String("path", req.URL.Path))
		return
	}
	req.Header.Set(HeaderCSRF, token)
	c.log.Debug("CSRF token attached", zap.String("path", req.URL.Path))
}

// persist keeps the session's cookies and anti-forgery token current. The
// cookie is applied after the body so it wins on conflict.
func (c *Client) persist(store session.Store, resp *http.Response, data []byte, cookies map[string]string) {
	if set := resp.Cookies(); len(set) > 0 {
		for _, ck := range set {
			if ck.MaxAge < 0 || ck.Value == "" {
				delete(cookies, ck.Name)
				continue
			}
			cookies[ck.Name] = ck.Value
		}
		session.SaveCookies(store, cookies)
	}
	if tok := bodyToken(data); tok != "" {
		store.Set(session.KeyCSRFToken, tok)
	}
	if tok := cookies[CookieCSRF]; tok != "" {
		store.Set(session.KeyCSRFToken, tok)
	}
}

// resetSession forgets the user and asks for the login page. Nothing is
// touched while the login page itself is being served.
func (c *Client) resetSession(ctx context.Context, store session.Store) {
	nav := session.NavigatorFrom(ctx)
	if nav != nil && nav.OnLoginPage() {
		return
	}
	if store != nil {
		store.Delete(session.KeyUserData, session.KeyCSRFToken)
	}
	if nav != nil {
		nav.Redirect(LoginPath)
	}
}

func bodyToken(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return ""
	}
	var v struct {
		CSRFToken string `json:"csrf_token"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return ""
	}
	return v.CSRFToken
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func isCSRFExempt(path string) bool {
	for _, p := range csrfExempt {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

func truncateBody(b []byte) []byte {
	if len(b) > 512 {
		return b[:512]
	}
	return b
}

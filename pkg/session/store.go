// Package session is the per-browser durable key-value storage shared by every
// page and every API client of a request.
package session

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"go.uber.org/zap"

	"cooperativa/pkg/session/repository"
)

const (
	KeyCSRFToken = "csrf_token"
	KeyUserData  = "user_data"
	KeyCookies   = "cookies"
	KeyFlash     = "flash"
)

// Store reads and writes one session's values. Storage failures are logged,
// never surfaced: a missing value behaves like an empty one.
type Store interface {
	Get(key string) string
	Set(key, value string)
	Delete(keys ...string)
}

type dbStore struct {
	repo repository.SessionRepository
	id   string
	log  *zap.Logger
}

func NewStore(repo repository.SessionRepository, id string, log *zap.Logger) Store {
	return &dbStore{repo: repo, id: id, log: log}
}

func (s *dbStore) Get(key string) string {
	v, _, err := s.repo.Get(s.id, key)
	if err != nil {
		s.log.Warn("session get", zap.String("key", key), zap.Error(err))
	}
	return v
}

func (s *dbStore) Set(key, value string) {
	if err := s.repo.Set(s.id, key, value); err != nil {
		s.log.Warn("session set", zap.String("key", key), zap.Error(err))
	}
}

func (s *dbStore) Delete(keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := s.repo.Delete(s.id, keys...); err != nil {
		s.log.Warn("session delete", zap.Strings("keys", keys), zap.Error(err))
	}
}

// MemoryStore keeps values in process memory. Used by the CLI and tests.
type MemoryStore struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{m: map[string]string{}} }

func (s *MemoryStore) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[key]
}

func (s *MemoryStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

func (s *MemoryStore) Delete(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.m, k)
	}
}

// Cookies returns the backend cookies remembered for the session.
func Cookies(s Store) map[string]string {
	out := map[string]string{}
	raw := s.Get(KeyCookies)
	if raw == "" {
		return out
	}
	_ = json.Unmarshal([]byte(raw), &out)
	return out
}

func SaveCookies(s Store, cookies map[string]string) {
	b, err := json.Marshal(cookies)
	if err != nil {
		return
	}
	s.Set(KeyCookies, string(b))
}

// Flash is a one-shot message carried across a redirect.
type Flash struct {
	Message string `json:"message"`
	Type    string `json:"type"` // success|error|info
}

func SetFlash(s Store, message, typ string) {
	b, _ := json.Marshal(Flash{Message: message, Type: typ})
	s.Set(KeyFlash, string(b))
}

func PopFlash(s Store) *Flash {
	raw := s.Get(KeyFlash)
	if raw == "" {
		return nil
	}
	s.Delete(KeyFlash)
	var f Flash
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return nil
	}
	return &f
}

// Navigator records a forced navigation requested while serving a page.
type Navigator struct {
	mu     sync.Mutex
	path   string
	target string
}

func NewNavigator(currentPath string) *Navigator { return &Navigator{path: currentPath} }

// Redirect asks for navigation to target unless the current page is already
// the login screen.
func (n *Navigator) Redirect(target string) {
	if n.OnLoginPage() {
		return
	}
	n.mu.Lock()
	n.target = target
	n.mu.Unlock()
}

// OnLoginPage reports whether the request is serving the login screen.
func (n *Navigator) OnLoginPage() bool { return strings.Contains(n.path, "/login") }

func (n *Navigator) Target() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.target, n.target != ""
}

type storeKey struct{}
type navKey struct{}

func WithStore(ctx context.Context, s Store) context.Context {
	return context.WithValue(ctx, storeKey{}, s)
}

// FromContext returns the request's store, or nil outside a session.
func FromContext(ctx context.Context) Store {
	s, _ := ctx.Value(storeKey{}).(Store)
	return s
}

func WithNavigator(ctx context.Context, n *Navigator) context.Context {
	return context.WithValue(ctx, navKey{}, n)
}

func NavigatorFrom(ctx context.Context) *Navigator {
	n, _ := ctx.Value(navKey{}).(*Navigator)
	return n
}

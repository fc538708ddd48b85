package controllerImp

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var appStart = time.Now()

// Pinger reports whether the backend origin answers.
type Pinger interface {
	Reachable(ctx context.Context) error
}

type HealthCtrl struct {
	db      *gorm.DB
	backend Pinger
}

func NewHealthCtrl(db *gorm.DB, backend Pinger) *HealthCtrl {
	return &HealthCtrl{db: db, backend: backend}
}

type check struct {
	OK  bool   `json:"ok"`
	Err string `json:"err,omitempty"`
}

func (h *HealthCtrl) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 800*time.Millisecond)
	defer cancel()

	db := h.pingDB(ctx)
	backend := check{OK: true}
	if h.backend != nil {
		if err := h.backend.Reachable(ctx); err != nil {
			backend = check{Err: err.Error()}
		}
	}

	// only the session store is fatal
	status := http.StatusOK
	if !db.OK {
		status = http.StatusServiceUnavailable
	}

	resp := map[string]any{
		"status":     map[string]any{"ok": db.OK, "degraded": !backend.OK},
		"uptime_sec": int(time.Since(appStart).Seconds()),
		"checks": map[string]any{
			"database": db,
			"backend":  backend,
		},
		"time": time.Now().Format(time.RFC3339),
	}
	return c.JSON(status, resp)
}

func (h *HealthCtrl) pingDB(ctx context.Context) check {
	if h.db == nil {
		return check{Err: "gorm db is nil"}
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return check{Err: "db.DB(): " + err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return check{Err: "ping: " + err.Error()}
	}
	return check{OK: true}
}

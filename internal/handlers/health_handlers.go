package handlers

import (
	"context"
	"net/http"
	"time"

	"stockmed/internal/caching"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

type HealthHandlers struct {
	db       *pgxpool.Pool
	cacheSvc caching.CacheService
}

func NewHealthHandlers(db *pgxpool.Pool, cacheSvc caching.CacheService) *HealthHandlers {
	return &HealthHandlers{
		db:       db,
		cacheSvc: cacheSvc,
	}
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// HealthCheck reports liveness of the database and cache. The cache being
// down degrades the status but does not make the service unhealthy.
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx := c.Request().Context()
	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
	}

	if err := h.db.Ping(ctx); err != nil {
		health.Status = "unhealthy"
		health.Services["database"] = "down"
	} else {
		health.Services["database"] = "up"
	}

	if err := h.cacheRoundTrip(ctx); err != nil {
		if health.Status == "healthy" {
			health.Status = "degraded"
		}
		health.Services["cache"] = "down"
	} else {
		health.Services["cache"] = "up"
	}

	status := http.StatusOK
	if health.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, health)
}

// cacheRoundTrip writes, reads back and removes a scratch key.
func (h *HealthHandlers) cacheRoundTrip(ctx context.Context) error {
	if err := h.cacheSvc.SetString(ctx, "healthcheck", "ok", time.Minute); err != nil {
		return err
	}
	if _, err := h.cacheSvc.GetString(ctx, "healthcheck"); err != nil {
		return err
	}
	return h.cacheSvc.Delete(ctx, "healthcheck")
}
